package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/medvoyage/lead-service/internal/models"
	"github.com/medvoyage/lead-service/internal/services"
	"github.com/medvoyage/lead-service/internal/utils"
)

type HandlerManager struct {
	questionnaireHandler *QuestionnaireHandler
	leadHandler          *LeadHandler
	profileHandler       *ProfileHandler
	auth                 *Authenticator
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	auth *Authenticator,
	validator *utils.Validator,
	maxAttachmentSize int64,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		questionnaireHandler: NewQuestionnaireHandler(serviceManager.Questionnaire(), maxAttachmentSize, logger),
		leadHandler:          NewLeadHandler(serviceManager.Lead(), serviceManager.Export(), validator, logger),
		profileHandler:       NewProfileHandler(serviceManager.Profile(), logger),
		auth:                 auth,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public questionnaire routes; auth is optional so signed-in
		// visitors get prefilled details.
		sessions := v1.Group("/questionnaire/sessions", hm.auth.OptionalAuth())
		{
			sessions.POST("", hm.questionnaireHandler.StartSession)
			sessions.GET("/:token", hm.questionnaireHandler.GetSession)
			sessions.PUT("/:token/answer", hm.questionnaireHandler.RecordAnswer)
			sessions.POST("/:token/advance", hm.questionnaireHandler.Advance)
			sessions.POST("/:token/retreat", hm.questionnaireHandler.Retreat)
			sessions.POST("/:token/attachment", hm.questionnaireHandler.UploadAttachment)
			sessions.POST("/:token/submit", hm.questionnaireHandler.Submit)
		}

		v1.GET("/me", hm.auth.RequireAuth(), hm.profileHandler.GetMe)

		// Dashboard routes
		leads := v1.Group("/leads", hm.auth.RequireAuth())
		{
			leads.GET("", hm.leadHandler.ListLeads)
			leads.GET("/:id", hm.leadHandler.GetLead)
			leads.PUT("/:id/status", hm.auth.RequireRole(models.RoleAdmin, models.RoleHospital), hm.leadHandler.UpdateLeadStatus)

			// Admin-only routes
			admin := leads.Group("", hm.auth.RequireRole(models.RoleAdmin))
			{
				admin.POST("/:id/assign", hm.leadHandler.AssignLead)
				admin.GET("/stats", hm.leadHandler.GetLeadStats)
				admin.GET("/export", hm.leadHandler.ExportLeads)
			}
		}
	}
}
