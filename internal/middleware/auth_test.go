package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mescore/api/internal/config"
	"mescore/api/internal/middleware"
	"mescore/api/internal/models"
	"mescore/api/internal/repository"
	"mescore/api/internal/security"
)

const testSecret = "test-signing-secret"

type stubUserSource struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newStubUserSource(users ...models.User) *stubUserSource {
	s := &stubUserSource{users: make(map[string]models.User)}
	for _, user := range users {
		s.users[user.ID] = user
	}
	return s
}

func (s *stubUserSource) GetByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *stubUserSource) setStatus(id string, status models.UserStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[id]
	user.Status = status
	s.users[id] = user
}

func testGateConfig() *config.AppConfig {
	return &config.AppConfig{
		Security: config.SecurityConfig{
			JWTSecret: testSecret,
			JWTTTL:    time.Hour,
		},
	}
}

func setupGateRouter(users middleware.UserSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", middleware.Auth(testGateConfig(), users), func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"userId": user.ID, "role": string(user.Role)})
	})
	router.GET("/open", middleware.OptionalAuth(testGateConfig(), users), func(c *gin.Context) {
		if user, ok := middleware.CurrentUser(c); ok {
			c.JSON(http.StatusOK, gin.H{"anonymous": false, "userId": user.ID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"anonymous": true})
	})
	return router
}

func approvedUser() models.User {
	return models.User{
		ID:     "user-1",
		Email:  "alice@example.com",
		Role:   models.UserRoleGeneral,
		Status: models.UserStatusApproved,
	}
}

func bearerFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := security.GenerateAccessToken(testSecret, user.ID, user.Email, string(user.Role), time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(router *gin.Engine, path string, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error
}

func TestAuthMissingHeader(t *testing.T) {
	router := setupGateRouter(newStubUserSource(approvedUser()))

	rr := doRequest(router, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "missing_token", errorBody(t, rr))
}

func TestAuthMalformedToken(t *testing.T) {
	router := setupGateRouter(newStubUserSource(approvedUser()))

	rr := doRequest(router, "/protected", "Bearer not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "invalid_token", errorBody(t, rr))
}

func TestAuthExpiredToken(t *testing.T) {
	user := approvedUser()
	router := setupGateRouter(newStubUserSource(user))

	token, err := security.GenerateAccessToken(testSecret, user.ID, user.Email, string(user.Role), -time.Minute)
	require.NoError(t, err)

	rr := doRequest(router, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "token_expired", errorBody(t, rr))
}

func TestAuthAccountGone(t *testing.T) {
	user := approvedUser()
	router := setupGateRouter(newStubUserSource()) // empty store

	rr := doRequest(router, "/protected", bearerFor(t, user))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "account_not_found", errorBody(t, rr))
}

func TestAuthPendingAccount(t *testing.T) {
	user := approvedUser()
	user.Status = models.UserStatusPending
	router := setupGateRouter(newStubUserSource(user))

	rr := doRequest(router, "/protected", bearerFor(t, user))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "account_pending", errorBody(t, rr))
}

func TestAuthApprovedAccountPasses(t *testing.T) {
	user := approvedUser()
	router := setupGateRouter(newStubUserSource(user))

	rr := doRequest(router, "/protected", bearerFor(t, user))
	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, user.ID, body["userId"])
	assert.Equal(t, "general", body["role"])
}

// Revoking approval locks the account out on its next request, even though
// the token itself is still within its lifetime.
func TestAuthRevocationTakesEffectImmediately(t *testing.T) {
	user := approvedUser()
	store := newStubUserSource(user)
	router := setupGateRouter(store)

	auth := bearerFor(t, user)

	rr := doRequest(router, "/protected", auth)
	require.Equal(t, http.StatusOK, rr.Code)

	store.setStatus(user.ID, models.UserStatusRejected)

	rr = doRequest(router, "/protected", auth)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "account_rejected", errorBody(t, rr))
}

func TestOptionalAuthAnonymousOnFailure(t *testing.T) {
	router := setupGateRouter(newStubUserSource(approvedUser()))

	for _, header := range []string{"", "Bearer garbage"} {
		rr := doRequest(router, "/open", header)
		assert.Equal(t, http.StatusOK, rr.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, true, body["anonymous"])
	}
}

func TestOptionalAuthAttachesUser(t *testing.T) {
	user := approvedUser()
	router := setupGateRouter(newStubUserSource(user))

	rr := doRequest(router, "/open", bearerFor(t, user))
	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, false, body["anonymous"])
	assert.Equal(t, user.ID, body["userId"])
}
