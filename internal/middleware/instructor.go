package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/learnhub-io/learnhub-api/internal/models"
	"github.com/learnhub-io/learnhub-api/internal/service"
	appErrors "github.com/learnhub-io/learnhub-api/pkg/errors"
	"github.com/learnhub-io/learnhub-api/pkg/response"
)

// ContextProfileKey is the gin context key storing the resolved profile.
const ContextProfileKey = "currentProfile"

// RequireInstructor resolves the caller's profile and only lets instructors
// through. The resolved profile is stored on the context so handlers can use
// its ID for course ownership.
func RequireInstructor(profiles *service.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		profile, err := profiles.Resolve(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if profile.Role != models.ProfileRoleInstructor {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "instructor role required"))
			c.Abort()
			return
		}

		c.Set(ContextProfileKey, profile)
		c.Next()
	}
}
