package questionnaire

import (
	"errors"
	"fmt"
)

// SourceWebsite tags submissions produced by the public questionnaire.
const SourceWebsite = "website"

var (
	// ErrNotCurrentQuestion is returned when an answer is recorded for a
	// question other than the one at the top of the history stack.
	ErrNotCurrentQuestion = errors.New("answer does not target the current question")

	// ErrCannotAdvance is returned when Advance is called while the staged
	// answer for the current question fails its validation rule.
	ErrCannotAdvance = errors.New("current answer does not allow advancing")

	// ErrAtStart is returned when Retreat is called on the start question.
	ErrAtStart = errors.New("cannot retreat past the start question")

	// ErrNotTerminal is returned when BuildSubmission is called before the
	// traversal has reached the terminal step.
	ErrNotTerminal = errors.New("questionnaire is not complete")

	// ErrSubmitting is returned when a second advance or submission is
	// attempted while one submission is outstanding.
	ErrSubmitting = errors.New("submission already in progress")
)

// Session is one user's traversal of a question graph: a history stack of
// visited question ids, the staged answer set, and a guard flag for the
// terminal submission. It is single-session state and not safe for
// concurrent use; the graph it references is shared and immutable.
type Session struct {
	graph         *Graph
	history       []string
	answers       map[string]Answer
	attachmentURL string
	terminal      bool
	submitting    bool
}

// NewSession starts a fresh traversal positioned on the graph's start node.
func NewSession(graph *Graph) *Session {
	return &Session{
		graph:   graph,
		history: []string{graph.StartID()},
		answers: make(map[string]Answer),
	}
}

// Current returns the question at the top of the history stack.
func (s *Session) Current() Question {
	id := s.history[len(s.history)-1]
	q, ok := s.graph.Question(id)
	if !ok {
		// Unreachable for a validated graph; history only ever holds ids
		// resolved through the graph itself.
		panic(&IntegrityError{QuestionID: id, Reason: "history references unknown question"})
	}
	return q
}

// Step reports the 1-based position within the traversal and the total
// number of questions, for progress display.
func (s *Session) Step() (int, int) {
	return len(s.history), s.graph.Len()
}

// Answer returns the staged answer for a question id, if any.
func (s *Session) Answer(id string) (Answer, bool) {
	a, ok := s.answers[id]
	return a, ok
}

// Complete reports whether the traversal has passed the terminal
// question and is ready for submission.
func (s *Session) Complete() bool {
	return s.terminal
}

// Record stages an answer for the current question, overwriting any
// previous value. No validation happens here: partial or invalid input may
// be staged and corrected before the user tries to advance.
func (s *Session) Record(questionID string, answer Answer) error {
	if questionID != s.Current().ID {
		return fmt.Errorf("%w: got %q, current is %q", ErrNotCurrentQuestion, questionID, s.Current().ID)
	}
	s.answers[questionID] = answer
	return nil
}

// Prefill stages an answer for a question the traversal has not reached
// yet, e.g. from a signed-in visitor's profile. Unknown question ids are
// ignored.
func (s *Session) Prefill(questionID string, answer Answer) {
	if _, ok := s.graph.Question(questionID); !ok {
		return
	}
	s.answers[questionID] = answer
}

// CanAdvance is the pure predicate the caller uses to enable the Next
// action. It never mutates session state.
func (s *Session) CanAdvance() bool {
	q := s.Current()
	return answerSatisfies(q, s.answers[q.ID])
}

// Advance moves to the successor chosen by the current answer: an explicit
// per-option branch when one is declared, the next question in declared
// order otherwise. It returns terminal=true without touching state when the
// current question is the last step; the caller then builds and persists
// the submission exactly once.
func (s *Session) Advance() (terminal bool, err error) {
	if s.submitting {
		return false, ErrSubmitting
	}
	if !s.CanAdvance() {
		return false, fmt.Errorf("%w: question %q", ErrCannotAdvance, s.Current().ID)
	}

	current := s.Current()
	nextID, ok := s.graph.NextID(current.ID, s.answers[current.ID])
	if !ok {
		s.terminal = true
		return true, nil
	}

	s.history = append(s.history, nextID)
	return false, nil
}

// Retreat pops the current question off the history stack. The answer
// previously staged for the now-current question is preserved, so
// re-advancing without changing it reproduces the same branch. Forward
// history is not retained: changing the answer and advancing again takes
// whatever branch the new answer selects.
func (s *Session) Retreat() error {
	if len(s.history) <= 1 {
		return ErrAtStart
	}
	s.history = s.history[:len(s.history)-1]
	s.terminal = false
	return nil
}

// SetAttachment stages the uploaded attachment reference for the
// submission. An empty url clears it.
func (s *Session) SetAttachment(url string) {
	s.attachmentURL = url
}

// BeginSubmit marks the submission as outstanding so a second attempt
// cannot start while one is in flight.
func (s *Session) BeginSubmit() error {
	if s.submitting {
		return ErrSubmitting
	}
	if !s.terminal {
		return ErrNotTerminal
	}
	s.submitting = true
	return nil
}

// EndSubmit clears the submitting guard. On failure history and answers
// are untouched, so the caller may retry without the user re-entering data.
func (s *Session) EndSubmit() {
	s.submitting = false
}

// Submission is the flattened terminal artifact handed to the lead store
// as a single insert.
type Submission struct {
	Email                 string         `json:"email"`
	Mobile                string         `json:"mobile,omitempty"`
	FullName              string         `json:"full_name,omitempty"`
	DateOfBirth           string         `json:"date_of_birth,omitempty"`
	TreatmentCategory     string         `json:"treatment_category"`
	Urgency               string         `json:"urgency,omitempty"`
	PreviousDiagnosis     string         `json:"previous_diagnosis,omitempty"`
	DiagnosisDetails      string         `json:"diagnosis_details,omitempty"`
	DestinationPreference []string       `json:"destination_preference,omitempty"`
	Budget                string         `json:"budget,omitempty"`
	PassportCountry       string         `json:"passport_country,omitempty"`
	TranslationLanguage   string         `json:"translation_language,omitempty"`
	VirtualConsultation   string         `json:"virtual_consultation,omitempty"`
	AllergiesConditions   []string       `json:"allergies_conditions,omitempty"`
	PrescriptionURL       string         `json:"prescription_url,omitempty"`
	QuestionnaireAnswers  map[string]any `json:"questionnaire_answers"`
	Source                string         `json:"source"`
}

// BuildSubmission flattens the answer set into the lead insert shape.
// Questions never visited simply yield absent fields. Pure with respect to
// session state; valid only once Advance has returned terminal.
func (s *Session) BuildSubmission() (*Submission, error) {
	if !s.terminal {
		return nil, ErrNotTerminal
	}

	raw := make(map[string]any, len(s.answers))
	for id, a := range s.answers {
		raw[id] = a.Raw()
	}

	sub := &Submission{
		Mobile:                s.text("mobile"),
		TreatmentCategory:     s.text("treatment_category"),
		Urgency:               s.text("urgency"),
		PreviousDiagnosis:     s.text("previous_diagnosis"),
		DiagnosisDetails:      s.text("diagnosis_details"),
		DestinationPreference: s.list("destination_preference"),
		Budget:                s.text("budget"),
		PassportCountry:       s.text("passport_country"),
		TranslationLanguage:   s.text("translation_language"),
		VirtualConsultation:   s.text("virtual_consultation"),
		AllergiesConditions:   s.list("allergies_conditions"),
		PrescriptionURL:       s.attachmentURL,
		QuestionnaireAnswers:  raw,
		Source:                SourceWebsite,
	}

	if sub.TreatmentCategory == "" {
		sub.TreatmentCategory = "other"
	}

	if details, ok := s.answers["personal_details"]; ok && details.Kind == ValueDetails {
		sub.FullName = details.Details.FullName
		sub.DateOfBirth = details.Details.DateOfBirth
		sub.Email = details.Details.Email
	}
	if sub.Email == "" {
		sub.Email = s.text("email")
	}

	return sub, nil
}

func (s *Session) text(id string) string {
	if a, ok := s.answers[id]; ok && a.Kind == ValueText {
		return a.Text
	}
	return ""
}

func (s *Session) list(id string) []string {
	a, ok := s.answers[id]
	if !ok {
		return nil
	}
	switch a.Kind {
	case ValueList:
		return a.List
	case ValueText:
		if a.Text == "" {
			return nil
		}
		return []string{a.Text}
	}
	return nil
}
