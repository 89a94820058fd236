package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mescore/api/internal/config"
	"mescore/api/internal/ids"
	"mescore/api/internal/mail"
	"mescore/api/internal/models"
	"mescore/api/internal/repository"
	"mescore/api/internal/security"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password,
	// so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountPending     = errors.New("account is awaiting administrator approval")
	ErrAccountRejected    = errors.New("account registration was rejected")
	ErrTokenInvalid       = errors.New("invalid or expired token")
	ErrAlreadyVerified    = errors.New("email already verified")
)

const resetTokenTTL = time.Hour

// UserStore is the slice of the credential store the auth flows need.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	FindByVerificationToken(ctx context.Context, token string) (models.User, error)
	MarkEmailVerified(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetResetToken(ctx context.Context, id string, token string, expiry time.Time) error
	FindByValidResetToken(ctx context.Context, token string) (models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
}

type AuthService struct {
	users  UserStore
	mailer mail.Mailer
	cfg    *config.AppConfig
	log    zerolog.Logger
}

func NewAuthService(users UserStore, mailer mail.Mailer, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		mailer: mailer,
		cfg:    cfg,
		log:    log,
	}
}

type RegisterInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Phone      *string
	Department string
	Position   string
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// Register creates a pending, unverified account and dispatches the
// verification mail. A mail failure is logged but never rolls back the
// registration: the caller can request a fresh token by registering the
// verification again, while the reset flow has no such fallback.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	input.Email = normalizeEmail(input.Email)
	if input.Email == "" || input.Password == "" {
		return models.User{}, fmt.Errorf("email and password required")
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}

	verifyToken, err := security.GenerateOpaqueToken(32)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:                ids.New(),
		Email:             input.Email,
		PasswordHash:      passwordHash,
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		Phone:             input.Phone,
		Department:        input.Department,
		Position:          input.Position,
		Role:              models.UserRoleGeneral,
		Status:            models.UserStatusPending,
		EmailVerified:     false,
		VerificationToken: &verifyToken,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return models.User{}, err
	}

	link := fmt.Sprintf("%s/verify-email?token=%s", s.cfg.FrontendBaseURL, verifyToken)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Confirm your email address by opening the link below:</p><p><a href=%q>%s</a></p>",
		user.FirstName, link, link)
	if err := s.mailer.Send(ctx, user.Email, "Verify your email address", body); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("verification mail dispatch failed")
	}

	return user, nil
}

// VerifyEmail redeems a verification token exactly once.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrTokenInvalid
	}

	user, err := s.users.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrTokenInvalid
		}
		return err
	}
	if user.EmailVerified {
		return ErrAlreadyVerified
	}

	return s.users.MarkEmailVerified(ctx, user.ID)
}

type LoginResult struct {
	Token string
	User  models.User
}

// Login checks credentials before approval status: a wrong password and an
// unknown email produce the same generic error, while a valid credential
// against a pending or rejected account reports why it cannot log in.
func (s *AuthService) Login(ctx context.Context, email string, password string) (LoginResult, error) {
	email = normalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	switch user.Status {
	case models.UserStatusRejected:
		return LoginResult{}, ErrAccountRejected
	case models.UserStatusPending:
		return LoginResult{}, ErrAccountPending
	}

	token, err := security.GenerateAccessToken(
		s.cfg.Security.JWTSecret,
		user.ID,
		user.Email,
		string(user.Role),
		s.cfg.Security.JWTTTL,
	)
	if err != nil {
		return LoginResult{}, err
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("last login update failed")
	}
	user.LastLoginAt = &now

	return LoginResult{Token: token, User: user}, nil
}

// ForgotPassword never reveals whether the email exists; the handler sends
// the same response either way. A mail failure IS returned, since the user
// has no other way to discover the token.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}

	resetToken, err := security.GenerateOpaqueToken(32)
	if err != nil {
		return err
	}
	expiry := time.Now().Add(resetTokenTTL)

	if err := s.users.SetResetToken(ctx, user.ID, resetToken, expiry); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.FrontendBaseURL, resetToken)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Reset your password within one hour using the link below:</p><p><a href=%q>%s</a></p>",
		user.FirstName, link, link)
	if err := s.mailer.Send(ctx, user.Email, "Password reset", body); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	return nil
}

// ResetPassword redeems a reset token. Expired and non-matching tokens are
// indistinguishable to the caller.
func (s *AuthService) ResetPassword(ctx context.Context, token string, newPassword string) error {
	if token == "" || newPassword == "" {
		return ErrTokenInvalid
	}

	user, err := s.users.FindByValidResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrTokenInvalid
		}
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.users.UpdatePassword(ctx, user.ID, passwordHash)
}
