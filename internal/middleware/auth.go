package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"mescore/api/internal/config"
	"mescore/api/internal/models"
	"mescore/api/internal/security"
)

const (
	ContextUser   = "current_user"
	ContextClaims = "access_claims"
)

// UserSource is the account lookup the gate performs on every request.
type UserSource interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

func abortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

// Auth validates the bearer token and then re-fetches the account, so a
// revoked or rejected account is locked out on its very next request even
// though its token has not expired. Claims are never trusted for role or
// status.
func Auth(cfg *config.AppConfig, users UserSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, claims, status, message := authenticate(c, cfg, users)
		if message != "" {
			abortError(c, status, message)
			return
		}

		c.Set(ContextClaims, *claims)
		c.Set(ContextUser, user)

		c.Next()
	}
}

// OptionalAuth runs the same checks but proceeds anonymously on any failure.
// Handlers behind it must treat a missing context user as an anonymous
// caller, never as an error.
func OptionalAuth(cfg *config.AppConfig, users UserSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, claims, _, message := authenticate(c, cfg, users)
		if message == "" {
			c.Set(ContextClaims, *claims)
			c.Set(ContextUser, user)
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, cfg *config.AppConfig, users UserSource) (models.User, *security.AccessClaims, int, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return models.User{}, nil, http.StatusUnauthorized, "missing_token"
	}

	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := security.ParseAccessToken(tokenStr, cfg.Security.JWTSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.User{}, nil, http.StatusUnauthorized, "token_expired"
		}
		return models.User{}, nil, http.StatusUnauthorized, "invalid_token"
	}

	user, err := users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		return models.User{}, nil, http.StatusUnauthorized, "account_not_found"
	}

	if user.Status != models.UserStatusApproved {
		if user.Status == models.UserStatusRejected {
			return models.User{}, nil, http.StatusForbidden, "account_rejected"
		}
		return models.User{}, nil, http.StatusForbidden, "account_pending"
	}

	return user, claims, 0, ""
}

// CurrentUser pulls the gate-attached account out of the gin context.
func CurrentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get(ContextUser)
	if !exists {
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	return user, ok
}
