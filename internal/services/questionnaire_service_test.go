package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/medvoyage/lead-service/internal/cache"
	"github.com/medvoyage/lead-service/internal/events"
	"github.com/medvoyage/lead-service/internal/models"
	"github.com/medvoyage/lead-service/internal/questionnaire"
	"github.com/medvoyage/lead-service/internal/storage"
	"github.com/medvoyage/lead-service/internal/utils"
)

type questionnaireFixture struct {
	svc         QuestionnaireService
	sessions    *cache.MemorySessionStore
	attachments *storage.MockAttachmentStore
	leadRepo    *MockLeadRepository
	publisher   *events.MockEventPublisher
}

func newQuestionnaireFixture(t *testing.T) *questionnaireFixture {
	t.Helper()

	sessions := cache.NewMemorySessionStore()
	attachments := storage.NewMockAttachmentStore()
	leadRepo := &MockLeadRepository{}
	publisher := events.NewMockEventPublisher(testLogger())

	leads := NewLeadService(&MockRepository{leadRepo: leadRepo}, publisher, testLogger(), utils.NewValidator())
	svc := NewQuestionnaireService(questionnaire.DefaultGraph(), sessions, attachments, leads, testLogger(), time.Hour)

	return &questionnaireFixture{
		svc:         svc,
		sessions:    sessions,
		attachments: attachments,
		leadRepo:    leadRepo,
		publisher:   publisher,
	}
}

// answerAndAdvance records an answer for the current question and moves on.
func (f *questionnaireFixture) answerAndAdvance(t *testing.T, token string, answer questionnaire.Answer) *SessionView {
	t.Helper()

	ctx := context.Background()
	view, err := f.svc.Current(ctx, token)
	require.NoError(t, err)

	_, err = f.svc.RecordAnswer(ctx, token, view.Question.ID, answer)
	require.NoError(t, err)

	view, err = f.svc.Advance(ctx, token)
	require.NoError(t, err)
	return view
}

// walkToCompletion drives a session through the whole intake flow taking the
// "symptoms" branch, stopping on the terminal question.
func (f *questionnaireFixture) walkToCompletion(t *testing.T, token string) *SessionView {
	t.Helper()

	f.answerAndAdvance(t, token, questionnaire.TextAnswer("cardiac"))
	f.answerAndAdvance(t, token, questionnaire.TextAnswer("1_month"))
	f.answerAndAdvance(t, token, questionnaire.TextAnswer("symptoms"))
	f.answerAndAdvance(t, token, questionnaire.ListAnswer("none"))
	f.answerAndAdvance(t, token, questionnaire.ListAnswer("germany"))
	f.answerAndAdvance(t, token, questionnaire.TextAnswer("5k_15k"))
	f.answerAndAdvance(t, token, questionnaire.TextAnswer("Spain"))
	f.answerAndAdvance(t, token, questionnaire.TextAnswer("russian"))
	f.answerAndAdvance(t, token, questionnaire.TextAnswer("yes"))
	f.answerAndAdvance(t, token, questionnaire.TextAnswer("+34600111222"))

	ctx := context.Background()
	view, err := f.svc.Current(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "personal_details", view.Question.ID)

	_, err = f.svc.RecordAnswer(ctx, token, "personal_details", questionnaire.DetailsAnswer(questionnaire.PersonalDetails{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
	}))
	require.NoError(t, err)

	view, err = f.svc.Advance(ctx, token)
	require.NoError(t, err)
	require.True(t, view.Complete)
	return view
}

func TestQuestionnaireService_Start(t *testing.T) {
	f := newQuestionnaireFixture(t)

	view, err := f.svc.Start(context.Background(), nil)

	require.NoError(t, err)
	assert.NotEmpty(t, view.Token)
	assert.Equal(t, "treatment_category", view.Question.ID)
	assert.Equal(t, 1, view.Step)
	assert.False(t, view.CanAdvance)
	assert.False(t, view.CanRetreat)
}

func TestQuestionnaireService_Start_PrefillsSignedInVisitor(t *testing.T) {
	f := newQuestionnaireFixture(t)

	view, err := f.svc.Start(context.Background(), &questionnaire.PersonalDetails{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
	})
	require.NoError(t, err)

	done := f.walkToCompletion(t, view.Token)
	assert.True(t, done.Complete)
}

func TestQuestionnaireService_SessionExpiry(t *testing.T) {
	f := newQuestionnaireFixture(t)

	_, err := f.svc.Current(context.Background(), "no-such-token")

	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestQuestionnaireService_RecordRejectsWrongQuestion(t *testing.T) {
	f := newQuestionnaireFixture(t)
	view, err := f.svc.Start(context.Background(), nil)
	require.NoError(t, err)

	_, err = f.svc.RecordAnswer(context.Background(), view.Token, "budget", questionnaire.TextAnswer("under_5k"))

	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestQuestionnaireService_AdvanceRequiresValidAnswer(t *testing.T) {
	f := newQuestionnaireFixture(t)
	view, err := f.svc.Start(context.Background(), nil)
	require.NoError(t, err)

	_, err = f.svc.Advance(context.Background(), view.Token)

	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestQuestionnaireService_RetreatAcrossRequests(t *testing.T) {
	f := newQuestionnaireFixture(t)
	ctx := context.Background()

	start, err := f.svc.Start(ctx, nil)
	require.NoError(t, err)
	token := start.Token

	f.answerAndAdvance(t, token, questionnaire.TextAnswer("cardiac"))

	view, err := f.svc.Retreat(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "treatment_category", view.Question.ID)
	require.NotNil(t, view.StagedAnswer)
	assert.Equal(t, "cardiac", view.StagedAnswer.Text)

	_, err = f.svc.Retreat(ctx, token)
	assert.ErrorIs(t, err, questionnaire.ErrAtStart)
}

func TestQuestionnaireService_StageAttachment(t *testing.T) {
	f := newQuestionnaireFixture(t)
	ctx := context.Background()

	start, err := f.svc.Start(ctx, nil)
	require.NoError(t, err)
	token := start.Token

	t.Run("rejected on questions without attachment support", func(t *testing.T) {
		_, err := f.svc.StageAttachment(ctx, token, "report.pdf", strings.NewReader("data"))
		assert.ErrorIs(t, err, ErrAttachmentNotAllowed)
	})

	f.answerAndAdvance(t, token, questionnaire.TextAnswer("cardiac"))
	f.answerAndAdvance(t, token, questionnaire.TextAnswer("1_month"))
	f.answerAndAdvance(t, token, questionnaire.TextAnswer("yes"))

	t.Run("stored on the diagnosis details question", func(t *testing.T) {
		result, err := f.svc.StageAttachment(ctx, token, "report.pdf", strings.NewReader("data"))
		require.NoError(t, err)
		assert.Empty(t, result.Warning)
		assert.True(t, strings.HasPrefix(result.URL, "mock://attachments/"))
	})

	t.Run("store failure degrades to a warning", func(t *testing.T) {
		f.attachments.FailWith = errors.New("disk full")
		defer func() { f.attachments.FailWith = nil }()

		result, err := f.svc.StageAttachment(ctx, token, "report.pdf", strings.NewReader("data"))
		require.NoError(t, err)
		assert.Empty(t, result.URL)
		assert.NotEmpty(t, result.Warning)
	})

	t.Run("size limit gets its own warning", func(t *testing.T) {
		f.attachments.FailWith = storage.ErrAttachmentTooLarge
		defer func() { f.attachments.FailWith = nil }()

		result, err := f.svc.StageAttachment(ctx, token, "report.pdf", strings.NewReader("data"))
		require.NoError(t, err)
		assert.Contains(t, result.Warning, "size limit")
	})
}

func TestQuestionnaireService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("incomplete session cannot submit", func(t *testing.T) {
		f := newQuestionnaireFixture(t)
		start, err := f.svc.Start(ctx, nil)
		require.NoError(t, err)

		_, err = f.svc.Submit(ctx, start.Token, LeadAttribution{})

		assert.ErrorIs(t, err, ErrSessionNotComplete)
	})

	t.Run("completed session becomes a lead and the session is gone", func(t *testing.T) {
		f := newQuestionnaireFixture(t)
		start, err := f.svc.Start(ctx, nil)
		require.NoError(t, err)
		token := start.Token

		f.walkToCompletion(t, token)

		f.leadRepo.On("Create", mock.Anything, mock.MatchedBy(func(lead *models.Lead) bool {
			return lead.Email == "jane@example.com" &&
				lead.TreatmentCategory == "cardiac" &&
				lead.DiagnosisDetails == nil // symptoms branch skipped the details question
		})).Return(nil)

		lead, err := f.svc.Submit(ctx, token, LeadAttribution{UTMSource: "newsletter"})

		require.NoError(t, err)
		assert.Equal(t, models.LeadStatusNew, lead.Status)
		require.Len(t, f.publisher.Events, 1)
		assert.Equal(t, events.EventLeadCreated, f.publisher.Events[0].Type)

		_, err = f.svc.Current(ctx, token)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("failed insert preserves the session for retry", func(t *testing.T) {
		f := newQuestionnaireFixture(t)
		start, err := f.svc.Start(ctx, nil)
		require.NoError(t, err)
		token := start.Token

		f.walkToCompletion(t, token)

		f.leadRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()
		_, err = f.svc.Submit(ctx, token, LeadAttribution{})
		require.Error(t, err)

		// Session survives; the retry succeeds without re-answering.
		view, err := f.svc.Current(ctx, token)
		require.NoError(t, err)
		assert.True(t, view.Complete)

		f.leadRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		lead, err := f.svc.Submit(ctx, token, LeadAttribution{})
		require.NoError(t, err)
		assert.NotEmpty(t, lead.ID)
	})

	t.Run("submission includes staged attachment url", func(t *testing.T) {
		f := newQuestionnaireFixture(t)
		start, err := f.svc.Start(ctx, nil)
		require.NoError(t, err)
		token := start.Token

		f.answerAndAdvance(t, token, questionnaire.TextAnswer("oncology"))
		f.answerAndAdvance(t, token, questionnaire.TextAnswer("3_months"))
		f.answerAndAdvance(t, token, questionnaire.TextAnswer("yes"))

		result, err := f.svc.StageAttachment(ctx, token, "biopsy.pdf", strings.NewReader("scan"))
		require.NoError(t, err)
		require.NotEmpty(t, result.URL)

		f.answerAndAdvance(t, token, questionnaire.TextAnswer("stage II, biopsy attached"))
		f.answerAndAdvance(t, token, questionnaire.ListAnswer("diabetes"))
		f.answerAndAdvance(t, token, questionnaire.ListAnswer("turkey"))
		f.answerAndAdvance(t, token, questionnaire.TextAnswer("15k_30k"))
		f.answerAndAdvance(t, token, questionnaire.TextAnswer("France"))
		f.answerAndAdvance(t, token, questionnaire.TextAnswer("not_required"))
		f.answerAndAdvance(t, token, questionnaire.TextAnswer("not_required"))
		f.answerAndAdvance(t, token, questionnaire.TextAnswer(""))

		_, err = f.svc.RecordAnswer(ctx, token, "personal_details", questionnaire.DetailsAnswer(questionnaire.PersonalDetails{
			FullName: "Marc Petit",
			Email:    "marc@example.com",
		}))
		require.NoError(t, err)
		view, err := f.svc.Advance(ctx, token)
		require.NoError(t, err)
		require.True(t, view.Complete)

		f.leadRepo.On("Create", mock.Anything, mock.MatchedBy(func(lead *models.Lead) bool {
			return lead.PrescriptionURL != nil && *lead.PrescriptionURL == result.URL
		})).Return(nil)

		_, err = f.svc.Submit(ctx, token, LeadAttribution{})
		require.NoError(t, err)
		f.leadRepo.AssertExpectations(t)
	})
}
