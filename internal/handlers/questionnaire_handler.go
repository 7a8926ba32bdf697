package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medvoyage/lead-service/internal/questionnaire"
	"github.com/medvoyage/lead-service/internal/services"
	"github.com/medvoyage/lead-service/internal/utils"
)

type QuestionnaireHandler struct {
	BaseHandler
	questionnaireService services.QuestionnaireService
	maxAttachmentSize    int64
}

func NewQuestionnaireHandler(
	questionnaireService services.QuestionnaireService,
	maxAttachmentSize int64,
	logger utils.Logger,
) *QuestionnaireHandler {
	return &QuestionnaireHandler{
		BaseHandler:          NewBaseHandler(logger),
		questionnaireService: questionnaireService,
		maxAttachmentSize:    maxAttachmentSize,
	}
}

// ===== REQUEST STRUCTURES =====

// AnswerPayload is the wire shape of a staged answer. Exactly one of the
// three value fields is expected; the most specific one present wins.
type AnswerPayload struct {
	Text    string                         `json:"text"`
	List    []string                       `json:"list"`
	Details *questionnaire.PersonalDetails `json:"details"`
}

func (p AnswerPayload) toAnswer() questionnaire.Answer {
	switch {
	case p.Details != nil:
		return questionnaire.DetailsAnswer(*p.Details)
	case p.List != nil:
		return questionnaire.ListAnswer(p.List...)
	default:
		return questionnaire.TextAnswer(p.Text)
	}
}

type RecordAnswerRequest struct {
	QuestionID string        `json:"question_id" binding:"required"`
	Answer     AnswerPayload `json:"answer"`
}

type SubmitRequest struct {
	UTMSource   string `json:"utm_source"`
	UTMCampaign string `json:"utm_campaign"`
}

// ===== SESSION LIFECYCLE =====

// StartSession opens a new questionnaire session. Signed-in visitors get
// their known details staged ahead of time.
func (h *QuestionnaireHandler) StartSession(c *gin.Context) {
	var prefill *questionnaire.PersonalDetails
	if actor := CurrentActor(c); actor.Email != "" {
		prefill = &questionnaire.PersonalDetails{
			Email:    actor.Email,
			FullName: CurrentDisplayName(c),
		}
	}

	view, err := h.questionnaireService.Start(c.Request.Context(), prefill)
	if err != nil {
		h.LogError(c, err, "Failed to start questionnaire session")
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetSession returns the current position of an existing session.
func (h *QuestionnaireHandler) GetSession(c *gin.Context) {
	token := ParseStringIDParam(c, "token")
	if token == "" {
		return
	}

	view, err := h.questionnaireService.Current(c.Request.Context(), token)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// RecordAnswer stages an answer for the session's current question.
func (h *QuestionnaireHandler) RecordAnswer(c *gin.Context) {
	token := ParseStringIDParam(c, "token")
	if token == "" {
		return
	}

	var req RecordAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	view, err := h.questionnaireService.RecordAnswer(c.Request.Context(), token, req.QuestionID, req.Answer.toAnswer())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Advance moves the session to the next question chosen by the current
// answer.
func (h *QuestionnaireHandler) Advance(c *gin.Context) {
	token := ParseStringIDParam(c, "token")
	if token == "" {
		return
	}

	view, err := h.questionnaireService.Advance(c.Request.Context(), token)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Retreat steps the session back to the previous question.
func (h *QuestionnaireHandler) Retreat(c *gin.Context) {
	token := ParseStringIDParam(c, "token")
	if token == "" {
		return
	}

	view, err := h.questionnaireService.Retreat(c.Request.Context(), token)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ===== ATTACHMENTS =====

// UploadAttachment stages a prescription or medical report file against
// the session's current question.
func (h *QuestionnaireHandler) UploadAttachment(c *gin.Context) {
	token := ParseStringIDParam(c, "token")
	if token == "" {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return
	}
	if fileHeader.Size > h.maxAttachmentSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Message: "File exceeds the maximum allowed size",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.LogError(c, err, "Failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to read uploaded file",
		})
		return
	}
	defer file.Close()

	result, err := h.questionnaireService.StageAttachment(c.Request.Context(), token, fileHeader.Filename, file)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ===== SUBMISSION =====

// Submit converts a completed session into a lead.
func (h *QuestionnaireHandler) Submit(c *gin.Context) {
	token := ParseStringIDParam(c, "token")
	if token == "" {
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	lead, err := h.questionnaireService.Submit(c.Request.Context(), token, services.LeadAttribution{
		UTMSource:   req.UTMSource,
		UTMCampaign: req.UTMCampaign,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Questionnaire submitted", "lead_id", lead.ID)
	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Submission received",
		Data:    gin.H{"lead_id": lead.ID},
	})
}
