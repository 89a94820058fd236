package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"mescore/api/internal/middleware"
	"mescore/api/internal/models"
)

func setupRoleRouter(attach *models.User, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/guarded",
		func(c *gin.Context) {
			if attach != nil {
				c.Set(middleware.ContextUser, *attach)
			}
			c.Next()
		},
		middleware.RequireRoles(roles...),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		},
	)
	return router
}

func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name     string
		role     models.UserRole
		allowed  []models.UserRole
		wantCode int
	}{
		{"admin bypasses any restriction", models.UserRoleAdmin, []models.UserRole{models.UserRoleManager}, http.StatusOK},
		{"matching role passes", models.UserRoleManager, []models.UserRole{models.UserRoleManager}, http.StatusOK},
		{"role outside set forbidden", models.UserRoleGeneral, []models.UserRole{models.UserRoleManager}, http.StatusForbidden},
		{"empty set admits only admin", models.UserRoleManager, nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := models.User{ID: "user-1", Role: tt.role, Status: models.UserStatusApproved}
			router := setupRoleRouter(&user, tt.allowed...)

			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
		})
	}
}

func TestRequireRolesWithoutGateUser(t *testing.T) {
	router := setupRoleRouter(nil, models.UserRoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
