package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mescore/api/internal/middleware"
	"mescore/api/internal/models"
	"mescore/api/internal/repository"
	"mescore/api/internal/service"
)

type registerRequest struct {
	Email      string  `json:"email" binding:"required,email"`
	Password   string  `json:"password" binding:"required,min=8"`
	FirstName  string  `json:"firstName" binding:"required"`
	LastName   string  `json:"lastName" binding:"required"`
	Phone      *string `json:"phone"`
	Department string  `json:"department" binding:"required"`
	Position   string  `json:"position" binding:"required"`
}

type userResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Phone         *string    `json:"phone,omitempty"`
	Department    string     `json:"department"`
	Position      string     `json:"position"`
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	EmailVerified bool       `json:"emailVerified"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
}

// sanitizeUser strips the password hash and every token column; only
// profile and lifecycle fields ever leave the server.
func sanitizeUser(user models.User) userResponse {
	return userResponse{
		ID:            user.ID,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Phone:         user.Phone,
		Department:    user.Department,
		Position:      user.Position,
		Role:          string(user.Role),
		Status:        string(user.Status),
		EmailVerified: user.EmailVerified,
		LastLoginAt:   user.LastLoginAt,
	}
}

func (h HandlerSet) RegisterAccount(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Department: req.Department,
		Position:   req.Position,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("registration failed")
		respondError(c, http.StatusInternalServerError, "registration failed")
		return
	}

	respondOK(c, http.StatusCreated, gin.H{"user": sanitizeUser(user)})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrAccountPending), errors.Is(err, service.ErrAccountRejected):
			respondError(c, http.StatusForbidden, err.Error())
		default:
			h.log.Error().Err(err).Msg("login failed")
			respondError(c, http.StatusInternalServerError, "login failed")
		}
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"token": result.Token,
		"user":  sanitizeUser(result.User),
	})
}

type verifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h HandlerSet) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.authService.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		switch {
		case errors.Is(err, service.ErrTokenInvalid):
			respondError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAlreadyVerified):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			h.log.Error().Err(err).Msg("email verification failed")
			respondError(c, http.StatusInternalServerError, "verification failed")
		}
		return
	}

	respondOK(c, http.StatusOK, gin.H{"message": "email verified"})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h HandlerSet) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.log.Error().Err(err).Msg("forgot password failed")
		respondError(c, http.StatusInternalServerError, "could not send reset email")
		return
	}

	// Identical body whether or not the account exists.
	respondOK(c, http.StatusOK, gin.H{
		"message": "if the email exists, a reset link has been sent",
	})
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("password reset failed")
		respondError(c, http.StatusInternalServerError, "password reset failed")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"message": "password updated"})
}

func (h HandlerSet) Profile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"user": sanitizeUser(user)})
}

// Check is a liveness probe for a token: reaching it at all means the gate
// accepted the caller.
func (h HandlerSet) Check(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"userId": user.ID,
		"role":   string(user.Role),
	})
}
