package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mescore/api/internal/models"
	"mescore/api/internal/security"
)

// RequireRoles rejects authenticated callers whose role is outside the
// allowed set. Must run after Auth.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abortError(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		if !security.Allow(user.Role, user.ID, "", roles...) {
			abortError(c, http.StatusForbidden, "forbidden")
			return
		}

		c.Next()
	}
}
