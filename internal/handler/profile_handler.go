package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnhub-io/learnhub-api/internal/service"
	appErrors "github.com/learnhub-io/learnhub-api/pkg/errors"
	"github.com/learnhub-io/learnhub-api/pkg/response"
)

// ProfileHandler exposes profile lookups for the authenticated user.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler constructs a profile handler.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Me godoc
// @Summary Get current user's profile
// @Description Returns the profile row provisioned for the authenticated user
// @Tags Profiles
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /me/profile [get]
func (h *ProfileHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	profile, err := h.profiles.Resolve(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, profile, nil)
}
