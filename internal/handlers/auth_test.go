package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mescore/api/internal/config"
	"mescore/api/internal/models"
	"mescore/api/internal/repository"
	"mescore/api/internal/security"
	"mescore/api/internal/service"
)

// memoryUserStore backs the auth endpoints without a database. Lookups and
// updates mirror the SQL semantics, including the expiry check on reset
// tokens.
type memoryUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[string]models.User)}
}

func (s *memoryUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *memoryUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *memoryUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *memoryUserStore) FindByVerificationToken(_ context.Context, token string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.VerificationToken != nil && *user.VerificationToken == token {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *memoryUserStore) MarkEmailVerified(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.EmailVerified = true
	user.VerificationToken = nil
	s.users[id] = user
	return nil
}

func (s *memoryUserStore) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.LastLoginAt = &at
	s.users[id] = user
	return nil
}

func (s *memoryUserStore) SetResetToken(_ context.Context, id string, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry
	s.users[id] = user
	return nil
}

func (s *memoryUserStore) FindByValidResetToken(_ context.Context, token string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ResetToken != nil && *user.ResetToken == token &&
			user.ResetTokenExpiry != nil && user.ResetTokenExpiry.After(time.Now()) {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *memoryUserStore) UpdatePassword(_ context.Context, id string, passwordHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	user.ResetToken = nil
	user.ResetTokenExpiry = nil
	s.users[id] = user
	return nil
}

func (s *memoryUserStore) approve(t *testing.T, email string) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, user := range s.users {
		if user.Email == email {
			user.Status = models.UserStatusApproved
			s.users[id] = user
			return
		}
	}
	t.Fatalf("no account for %s", email)
}

type silentMailer struct{}

func (silentMailer) Send(context.Context, string, string, string) error { return nil }

func authTestRouter(store *memoryUserStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.AppConfig{
		FrontendBaseURL: "https://mes.example.com",
		Security: config.SecurityConfig{
			JWTSecret: "handler-test-secret",
			JWTTTL:    time.Hour,
		},
	}
	h := HandlerSet{
		log:         zerolog.Nop(),
		cfg:         cfg,
		authService: service.NewAuthService(store, silentMailer{}, cfg, zerolog.Nop()),
	}

	router := gin.New()
	router.POST("/register", h.RegisterAccount)
	router.POST("/login", h.Login)
	router.POST("/forgot-password", h.ForgotPassword)
	return router
}

func postJSON(router *gin.Engine, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

const registerBody = `{
	"email": "worker@example.com",
	"password": "s3cret-pass",
	"firstName": "Mei",
	"lastName": "Lin",
	"department": "Assembly",
	"position": "Operator"
}`

func TestRegisterResponseNeverLeaksSecrets(t *testing.T) {
	store := newMemoryUserStore()
	router := authTestRouter(store)

	rr := postJSON(router, "/register", registerBody)
	require.Equal(t, http.StatusCreated, rr.Code)

	var body struct {
		Success bool           `json:"success"`
		User    map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "worker@example.com", body.User["email"])
	assert.Equal(t, "pending", body.User["status"])
	assert.Equal(t, false, body.User["emailVerified"])

	for _, forbidden := range []string{"passwordHash", "password", "verificationToken", "resetToken"} {
		_, leaked := body.User[forbidden]
		assert.False(t, leaked, "response must not carry %s", forbidden)
	}
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	store := newMemoryUserStore()
	router := authTestRouter(store)

	rr := postJSON(router, "/register", registerBody)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = postJSON(router, "/register", registerBody)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success":false`)
}

// An unknown email and a wrong password must be indistinguishable over the
// wire: same status code, byte-identical body.
func TestLoginEnumerationResistance(t *testing.T) {
	store := newMemoryUserStore()
	router := authTestRouter(store)

	rr := postJSON(router, "/register", registerBody)
	require.Equal(t, http.StatusCreated, rr.Code)
	store.approve(t, "worker@example.com")

	wrongPassword := postJSON(router, "/login",
		`{"email": "worker@example.com", "password": "not-the-password"}`)
	unknownEmail := postJSON(router, "/login",
		`{"email": "ghost@example.com", "password": "not-the-password"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLoginPendingAccountForbidden(t *testing.T) {
	store := newMemoryUserStore()
	router := authTestRouter(store)

	rr := postJSON(router, "/register", registerBody)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = postJSON(router, "/login",
		`{"email": "worker@example.com", "password": "s3cret-pass"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "approval")
}

func TestLoginApprovedAccountIssuesToken(t *testing.T) {
	store := newMemoryUserStore()
	router := authTestRouter(store)

	rr := postJSON(router, "/register", registerBody)
	require.Equal(t, http.StatusCreated, rr.Code)
	store.approve(t, "worker@example.com")

	rr = postJSON(router, "/login",
		`{"email": "worker@example.com", "password": "s3cret-pass"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Success)

	claims, err := security.ParseAccessToken(body.Token, "handler-test-secret")
	require.NoError(t, err)
	assert.Equal(t, "worker@example.com", claims.Email)
	assert.Equal(t, "general", claims.Role)
}

// The forgot-password endpoint answers identically for known and unknown
// emails.
func TestForgotPasswordGenericResponse(t *testing.T) {
	store := newMemoryUserStore()
	router := authTestRouter(store)

	rr := postJSON(router, "/register", registerBody)
	require.Equal(t, http.StatusCreated, rr.Code)

	known := postJSON(router, "/forgot-password", `{"email": "worker@example.com"}`)
	unknown := postJSON(router, "/forgot-password", `{"email": "ghost@example.com"}`)

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
}
