package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mescore/api/internal/config"
	"mescore/api/internal/models"
	"mescore/api/internal/repository"
	"mescore/api/internal/security"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserStore) FindByVerificationToken(_ context.Context, token string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.VerificationToken != nil && *user.VerificationToken == token {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) MarkEmailVerified(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok || user.EmailVerified {
		return repository.ErrUserNotFound
	}
	user.EmailVerified = true
	user.VerificationToken = nil
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
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

func (s *fakeUserStore) SetResetToken(_ context.Context, id string, token string, expiry time.Time) error {
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

func (s *fakeUserStore) FindByValidResetToken(_ context.Context, token string) (models.User, error) {
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

func (s *fakeUserStore) UpdatePassword(_ context.Context, id string, passwordHash []byte) error {
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

func (s *fakeUserStore) setStatus(id string, status models.UserStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[id]
	user.Status = status
	s.users[id] = user
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to string, subject string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Environment:     "test",
		FrontendBaseURL: "http://localhost:3000",
		Security: config.SecurityConfig{
			JWTSecret: "test-signing-secret",
			JWTTTL:    time.Hour,
		},
	}
}

func newTestService(t *testing.T) (*AuthService, *fakeUserStore, *fakeMailer) {
	t.Helper()
	store := newFakeUserStore()
	mailer := &fakeMailer{}
	svc := NewAuthService(store, mailer, testConfig(), zerolog.Nop())
	return svc, store, mailer
}

func register(t *testing.T, svc *AuthService, email string, password string) models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		Email:      email,
		Password:   password,
		FirstName:  "Alice",
		LastName:   "Nguyen",
		Department: "Assembly",
		Position:   "Operator",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterCreatesPendingUnverifiedAccount(t *testing.T) {
	svc, store, mailer := newTestService(t)

	user := register(t, svc, "Alice@Example.com", "P@ssw0rd1")

	stored, err := store.GetByID(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", stored.Email)
	assert.Equal(t, models.UserStatusPending, stored.Status)
	assert.Equal(t, models.UserRoleGeneral, stored.Role)
	assert.False(t, stored.EmailVerified)
	require.NotNil(t, stored.VerificationToken)
	assert.NotEmpty(t, *stored.VerificationToken)
	assert.NotContains(t, string(stored.PasswordHash), "P@ssw0rd1")

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "alice@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Body, *stored.VerificationToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	register(t, svc, "alice@example.com", "P@ssw0rd1")

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:      "ALICE@example.com",
		Password:   "different-pass",
		FirstName:  "Other",
		LastName:   "Person",
		Department: "QA",
		Position:   "Inspector",
	})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestRegisterMailFailureDoesNotRollBack(t *testing.T) {
	store := newFakeUserStore()
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc := NewAuthService(store, mailer, testConfig(), zerolog.Nop())

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:      "bob@example.com",
		Password:   "P@ssw0rd1",
		FirstName:  "Bob",
		LastName:   "Lee",
		Department: "Packaging",
		Position:   "Operator",
	})
	require.NoError(t, err)

	_, err = store.GetByID(context.Background(), user.ID)
	assert.NoError(t, err)
}

func TestVerifyEmailRedeemsOnce(t *testing.T) {
	svc, store, _ := newTestService(t)

	user := register(t, svc, "alice@example.com", "P@ssw0rd1")
	stored, _ := store.GetByID(context.Background(), user.ID)
	token := *stored.VerificationToken

	require.NoError(t, svc.VerifyEmail(context.Background(), token))

	stored, _ = store.GetByID(context.Background(), user.ID)
	assert.True(t, stored.EmailVerified)
	assert.Nil(t, stored.VerificationToken)

	err := svc.VerifyEmail(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.VerifyEmail(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestLoginStatusGate(t *testing.T) {
	svc, store, _ := newTestService(t)

	user := register(t, svc, "alice@example.com", "P@ssw0rd1")

	_, err := svc.Login(context.Background(), "alice@example.com", "P@ssw0rd1")
	assert.ErrorIs(t, err, ErrAccountPending)

	store.setStatus(user.ID, models.UserStatusRejected)
	_, err = svc.Login(context.Background(), "alice@example.com", "P@ssw0rd1")
	assert.ErrorIs(t, err, ErrAccountRejected)

	store.setStatus(user.ID, models.UserStatusApproved)
	result, err := svc.Login(context.Background(), "alice@example.com", "P@ssw0rd1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestLoginEnumerationResistance(t *testing.T) {
	svc, store, _ := newTestService(t)

	user := register(t, svc, "alice@example.com", "P@ssw0rd1")
	store.setStatus(user.ID, models.UserStatusApproved)

	_, wrongPassErr := svc.Login(context.Background(), "alice@example.com", "wrong")
	_, unknownErr := svc.Login(context.Background(), "nobody@example.com", "wrong")

	assert.ErrorIs(t, wrongPassErr, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.Equal(t, wrongPassErr.Error(), unknownErr.Error())
}

func TestLoginIssuesMatchingClaims(t *testing.T) {
	svc, store, _ := newTestService(t)

	user := register(t, svc, "alice@example.com", "P@ssw0rd1")
	store.setStatus(user.ID, models.UserStatusApproved)

	result, err := svc.Login(context.Background(), "alice@example.com", "P@ssw0rd1")
	require.NoError(t, err)

	claims, err := security.ParseAccessToken(result.Token, "test-signing-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "general", claims.Role)

	stored, _ := store.GetByID(context.Background(), user.ID)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, _, mailer := newTestService(t)

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestForgotPasswordOverwritesToken(t *testing.T) {
	svc, store, mailer := newTestService(t)

	user := register(t, svc, "alice@example.com", "P@ssw0rd1")

	require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))
	stored, _ := store.GetByID(context.Background(), user.ID)
	require.NotNil(t, stored.ResetToken)
	firstToken := *stored.ResetToken

	require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))
	stored, _ = store.GetByID(context.Background(), user.ID)
	require.NotNil(t, stored.ResetToken)
	assert.NotEqual(t, firstToken, *stored.ResetToken)
	require.NotNil(t, stored.ResetTokenExpiry)
	assert.True(t, stored.ResetTokenExpiry.After(time.Now()))

	// registration mail plus two reset mails
	assert.Len(t, mailer.sent, 3)

	err := svc.ResetPassword(context.Background(), firstToken, "NewP@ssw0rd")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestForgotPasswordMailFailureSurfaced(t *testing.T) {
	store := newFakeUserStore()
	mailer := &fakeMailer{}
	svc := NewAuthService(store, mailer, testConfig(), zerolog.Nop())

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:      "carol@example.com",
		Password:   "P@ssw0rd1",
		FirstName:  "Carol",
		LastName:   "Diaz",
		Department: "QA",
		Position:   "Inspector",
	})
	require.NoError(t, err)
	_ = user

	mailer.err = errors.New("smtp down")
	err = svc.ForgotPassword(context.Background(), "carol@example.com")
	assert.Error(t, err)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc, store, _ := newTestService(t)

	user := register(t, svc, "alice@example.com", "P@ssw0rd1")
	expired := time.Now().Add(-time.Minute)
	require.NoError(t, store.SetResetToken(context.Background(), user.ID, "stale-token", expired))

	err := svc.ResetPassword(context.Background(), "stale-token", "NewP@ssw0rd")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestResetPasswordSuccessClearsToken(t *testing.T) {
	svc, store, _ := newTestService(t)

	user := register(t, svc, "alice@example.com", "P@ssw0rd1")
	store.setStatus(user.ID, models.UserStatusApproved)

	require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))
	stored, _ := store.GetByID(context.Background(), user.ID)
	token := *stored.ResetToken

	require.NoError(t, svc.ResetPassword(context.Background(), token, "NewP@ssw0rd"))

	stored, _ = store.GetByID(context.Background(), user.ID)
	assert.Nil(t, stored.ResetToken)
	assert.Nil(t, stored.ResetTokenExpiry)

	_, err := svc.Login(context.Background(), "alice@example.com", "P@ssw0rd1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	result, err := svc.Login(context.Background(), "alice@example.com", "NewP@ssw0rd")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	err = svc.ResetPassword(context.Background(), token, "AnotherP@ss1")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
