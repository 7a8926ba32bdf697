package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medvoyage/lead-service/internal/services"
	"github.com/medvoyage/lead-service/internal/utils"
)

// ProfileHandler exposes the caller's own profile mirror.
type ProfileHandler struct {
	BaseHandler
	profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService, logger utils.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    BaseHandler{logger: logger},
		profileService: profileService,
	}
}

// GetMe returns the caller's profile, creating the local mirror from the
// token claims on first contact.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	actor := CurrentActor(c)

	profile, err := h.profileService.Get(c.Request.Context(), actor.UserID)
	if services.IsNotFound(err) {
		profile, err = h.profileService.Sync(c.Request.Context(), actor.UserID, actor.Email, CurrentDisplayName(c), actor.Role)
	}
	if err != nil {
		h.LogError(c, err, "Failed to resolve caller profile")
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
