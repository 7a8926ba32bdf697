package questionnaire

import "fmt"

type QuestionKind string

const (
	KindSingleChoice    QuestionKind = "single_choice"
	KindMultiChoice     QuestionKind = "multi_choice"
	KindFreeText        QuestionKind = "free_text"
	KindEmail           QuestionKind = "email"
	KindPhone           QuestionKind = "phone"
	KindDropdown        QuestionKind = "dropdown"
	KindPersonalDetails QuestionKind = "personal_details"
)

// Option is one selectable choice of a single/multi/dropdown question.
// NextQuestionID, when set, overrides the default document-order successor
// for answers that select this option.
type Option struct {
	Label          string `json:"label"`
	Value          string `json:"value"`
	NextQuestionID string `json:"next_question_id,omitempty"`
}

// Question is a single node of the questionnaire graph. Prompt and
// Description are display text and opaque to traversal logic.
type Question struct {
	ID               string       `json:"id"`
	Kind             QuestionKind `json:"kind"`
	Prompt           string       `json:"prompt"`
	Description      string       `json:"description,omitempty"`
	Placeholder      string       `json:"placeholder,omitempty"`
	Options          []Option     `json:"options,omitempty"`
	Required         bool         `json:"required"`
	AllowsAttachment bool         `json:"allows_attachment,omitempty"`
}

// IntegrityError reports a malformed question graph: a successor reference
// that does not resolve, or an edge that could prevent termination. It is a
// configuration defect surfaced once at graph construction, never during
// traversal.
type IntegrityError struct {
	QuestionID string
	Ref        string
	Reason     string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("questionnaire graph integrity: question %q -> %q: %s", e.QuestionID, e.Ref, e.Reason)
}

// Graph is the static, ordered set of questionnaire steps. It is immutable
// after construction and safe to share between sessions.
type Graph struct {
	questions []Question
	index     map[string]int
}

// NewGraph builds and validates a graph from the declared question order.
// Every explicit successor must resolve to an existing question at a later
// position; with only forward branch edges every traversal terminates in at
// most len(questions) steps.
func NewGraph(questions []Question) (*Graph, error) {
	if len(questions) == 0 {
		return nil, &IntegrityError{Reason: "graph has no questions"}
	}

	index := make(map[string]int, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			return nil, &IntegrityError{QuestionID: q.ID, Reason: "question has empty id"}
		}
		if _, dup := index[q.ID]; dup {
			return nil, &IntegrityError{QuestionID: q.ID, Reason: "duplicate question id"}
		}
		index[q.ID] = i
	}

	for i, q := range questions {
		for _, opt := range q.Options {
			if opt.NextQuestionID == "" {
				continue
			}
			target, ok := index[opt.NextQuestionID]
			if !ok {
				return nil, &IntegrityError{QuestionID: q.ID, Ref: opt.NextQuestionID, Reason: "successor does not exist"}
			}
			if target <= i {
				return nil, &IntegrityError{QuestionID: q.ID, Ref: opt.NextQuestionID, Reason: "successor must come later in declared order"}
			}
		}
	}

	qs := make([]Question, len(questions))
	copy(qs, questions)

	return &Graph{questions: qs, index: index}, nil
}

// MustGraph is NewGraph for static configuration that is known good.
func MustGraph(questions []Question) *Graph {
	g, err := NewGraph(questions)
	if err != nil {
		panic(err)
	}
	return g
}

// StartID returns the designated start node, the first question in order.
func (g *Graph) StartID() string {
	return g.questions[0].ID
}

// Len returns the number of questions in the graph.
func (g *Graph) Len() int {
	return len(g.questions)
}

// Question looks up a question by id.
func (g *Graph) Question(id string) (Question, bool) {
	i, ok := g.index[id]
	if !ok {
		return Question{}, false
	}
	return g.questions[i], true
}

// Questions returns the questions in declared order.
func (g *Graph) Questions() []Question {
	qs := make([]Question, len(g.questions))
	copy(qs, g.questions)
	return qs
}

// NextID resolves the successor of the given question for the given answer.
// A single-string answer selecting an option with an explicit successor
// takes that branch; otherwise the next question in declared order is used.
// ok is false when the question is the last step and the questionnaire is
// complete.
func (g *Graph) NextID(currentID string, answer Answer) (string, bool) {
	i, exists := g.index[currentID]
	if !exists {
		return "", false
	}

	current := g.questions[i]
	if len(current.Options) > 0 && answer.Kind == ValueText {
		for _, opt := range current.Options {
			if opt.Value == answer.Text && opt.NextQuestionID != "" {
				return opt.NextQuestionID, true
			}
		}
	}

	if i+1 < len(g.questions) {
		return g.questions[i+1].ID, true
	}
	return "", false
}
