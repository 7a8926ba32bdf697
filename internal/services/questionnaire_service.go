package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/medvoyage/lead-service/internal/cache"
	"github.com/medvoyage/lead-service/internal/models"
	"github.com/medvoyage/lead-service/internal/questionnaire"
	"github.com/medvoyage/lead-service/internal/storage"
)

// SessionView is the read model the API returns after every engine
// operation: where the visitor stands and whether they may move.
type SessionView struct {
	Token        string                  `json:"token"`
	Question     *questionnaire.Question `json:"question"`
	StagedAnswer *questionnaire.Answer   `json:"staged_answer,omitempty"`
	CanAdvance   bool                    `json:"can_advance"`
	CanRetreat   bool                    `json:"can_retreat"`
	Step         int                     `json:"step"`
	TotalSteps   int                     `json:"total_steps"`
	Complete     bool                    `json:"complete"`
}

// AttachmentResult reports the outcome of staging a file. A failed store
// write yields a warning instead of an error so the visitor can still
// finish the questionnaire without the file.
type AttachmentResult struct {
	URL     string `json:"url,omitempty"`
	Warning string `json:"warning,omitempty"`
}

type QuestionnaireService interface {
	// Start opens a fresh session at the graph's first question. When the
	// visitor is signed in, their profile details are staged ahead of time.
	Start(ctx context.Context, prefill *questionnaire.PersonalDetails) (*SessionView, error)

	Current(ctx context.Context, token string) (*SessionView, error)
	RecordAnswer(ctx context.Context, token, questionID string, answer questionnaire.Answer) (*SessionView, error)
	Advance(ctx context.Context, token string) (*SessionView, error)
	Retreat(ctx context.Context, token string) (*SessionView, error)
	StageAttachment(ctx context.Context, token, filename string, content io.Reader) (*AttachmentResult, error)

	// Submit turns a completed session into a stored lead. The session is
	// kept intact when the insert fails so the visitor can retry without
	// losing answers.
	Submit(ctx context.Context, token string, attr LeadAttribution) (*models.Lead, error)
}

type questionnaireService struct {
	graph       *questionnaire.Graph
	sessions    cache.SessionStore
	attachments storage.AttachmentStore
	leads       LeadService
	logger      *slog.Logger
	sessionTTL  time.Duration
}

func NewQuestionnaireService(
	graph *questionnaire.Graph,
	sessions cache.SessionStore,
	attachments storage.AttachmentStore,
	leads LeadService,
	logger *slog.Logger,
	sessionTTL time.Duration,
) QuestionnaireService {
	return &questionnaireService{
		graph:       graph,
		sessions:    sessions,
		attachments: attachments,
		leads:       leads,
		logger:      logger,
		sessionTTL:  sessionTTL,
	}
}

// ===== SESSION LIFECYCLE =====

func (s *questionnaireService) Start(ctx context.Context, prefill *questionnaire.PersonalDetails) (*SessionView, error) {
	session := questionnaire.NewSession(s.graph)
	if prefill != nil {
		stagePrefill(session, s.graph, *prefill)
	}

	token := uuid.NewString()
	if err := s.save(ctx, token, session); err != nil {
		return nil, err
	}

	s.logger.Info("Questionnaire session started", "token", token, "prefilled", prefill != nil)
	return s.view(token, session), nil
}

// stagePrefill copies a signed-in visitor's known details onto the
// questions that would otherwise ask for them. Invalid profile data is
// simply not staged; the visitor types it themselves.
func stagePrefill(session *questionnaire.Session, graph *questionnaire.Graph, details questionnaire.PersonalDetails) {
	for _, q := range graph.Questions() {
		switch q.Kind {
		case questionnaire.KindEmail:
			if questionnaire.ValidEmail(details.Email) {
				session.Prefill(q.ID, questionnaire.TextAnswer(details.Email))
			}
		case questionnaire.KindPersonalDetails:
			session.Prefill(q.ID, questionnaire.DetailsAnswer(details))
		}
	}
}

func (s *questionnaireService) Current(ctx context.Context, token string) (*SessionView, error) {
	session, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.view(token, session), nil
}

func (s *questionnaireService) RecordAnswer(ctx context.Context, token, questionID string, answer questionnaire.Answer) (*SessionView, error) {
	session, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := session.Record(questionID, answer); err != nil {
		if errors.Is(err, questionnaire.ErrNotCurrentQuestion) {
			return nil, fmt.Errorf("%w: %q is not the current question", ErrValidationFailed, questionID)
		}
		return nil, err
	}

	if err := s.save(ctx, token, session); err != nil {
		return nil, err
	}
	return s.view(token, session), nil
}

func (s *questionnaireService) Advance(ctx context.Context, token string) (*SessionView, error) {
	session, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}

	terminal, err := session.Advance()
	if err != nil {
		if errors.Is(err, questionnaire.ErrCannotAdvance) {
			return nil, fmt.Errorf("%w: current answer is missing or invalid", ErrValidationFailed)
		}
		return nil, err
	}

	if err := s.save(ctx, token, session); err != nil {
		return nil, err
	}

	if terminal {
		s.logger.Info("Questionnaire session reached terminal question", "token", token)
	}
	return s.view(token, session), nil
}

func (s *questionnaireService) Retreat(ctx context.Context, token string) (*SessionView, error) {
	session, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := session.Retreat(); err != nil {
		return nil, err
	}

	if err := s.save(ctx, token, session); err != nil {
		return nil, err
	}
	return s.view(token, session), nil
}

// ===== ATTACHMENTS =====

func (s *questionnaireService) StageAttachment(ctx context.Context, token, filename string, content io.Reader) (*AttachmentResult, error) {
	session, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}

	if current := session.Current(); !current.AllowsAttachment {
		return nil, ErrAttachmentNotAllowed
	}

	url, err := s.attachments.Save(ctx, filename, content)
	if err != nil {
		// The file is a nice-to-have on the lead; never strand the
		// visitor over it.
		s.logger.Error("Attachment upload failed, continuing without file",
			"token", token, "filename", filename, "error", err)
		if errors.Is(err, storage.ErrAttachmentTooLarge) {
			return &AttachmentResult{Warning: "file exceeds the size limit and was not saved"}, nil
		}
		return &AttachmentResult{Warning: "file could not be saved; you can submit without it"}, nil
	}

	session.SetAttachment(url)
	if err := s.save(ctx, token, session); err != nil {
		return nil, err
	}

	s.logger.Info("Attachment staged", "token", token, "url", url)
	return &AttachmentResult{URL: url}, nil
}

// ===== SUBMISSION =====

func (s *questionnaireService) Submit(ctx context.Context, token string, attr LeadAttribution) (*models.Lead, error) {
	session, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := session.BeginSubmit(); err != nil {
		switch {
		case errors.Is(err, questionnaire.ErrNotTerminal):
			return nil, ErrSessionNotComplete
		case errors.Is(err, questionnaire.ErrSubmitting):
			return nil, ErrSubmissionInFlight
		}
		return nil, err
	}

	sub, err := session.BuildSubmission()
	if err != nil {
		session.EndSubmit()
		return nil, err
	}

	lead, err := s.leads.CreateFromSubmission(ctx, token, sub, attr)
	if err != nil {
		session.EndSubmit()
		s.logger.Error("Lead submission failed, session preserved", "token", token, "error", err)
		return nil, err
	}

	// The lead exists; from here on failures are cleanup noise.
	if err := s.sessions.Delete(ctx, token); err != nil {
		s.logger.Warn("Failed to delete submitted session", "token", token, "error", err)
	}

	s.logger.Info("Questionnaire submitted", "token", token, "lead_id", lead.ID)
	return lead, nil
}

// ===== PERSISTENCE HELPERS =====

func (s *questionnaireService) load(ctx context.Context, token string) (*questionnaire.Session, error) {
	state, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, cache.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	session, err := questionnaire.Restore(s.graph, state)
	if err != nil {
		// A state that no longer fits the graph (e.g. after a deploy
		// that changed questions) is treated as expired.
		s.logger.Warn("Discarding session state incompatible with current graph", "token", token, "error", err)
		if delErr := s.sessions.Delete(ctx, token); delErr != nil {
			s.logger.Warn("Failed to delete stale session", "token", token, "error", delErr)
		}
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *questionnaireService) save(ctx context.Context, token string, session *questionnaire.Session) error {
	if err := s.sessions.Put(ctx, token, session.Snapshot(), s.sessionTTL); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *questionnaireService) view(token string, session *questionnaire.Session) *SessionView {
	current := session.Current()
	step, total := session.Step()

	view := &SessionView{
		Token:      token,
		Question:   &current,
		CanAdvance: session.CanAdvance(),
		CanRetreat: step > 1,
		Step:       step,
		TotalSteps: total,
		Complete:   session.Complete(),
	}
	if answer, ok := session.Answer(current.ID); ok {
		view.StagedAnswer = &answer
	}
	return view
}
