package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mescore/api/internal/models"
	"mescore/api/internal/repository"
)

func pagination(c *gin.Context) (limit int, offset int) {
	limit = 50
	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}
	return limit, offset
}

func (h HandlerSet) AdminListUsers(c *gin.Context) {
	limit, offset := pagination(c)

	users, err := h.users.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("list users failed")
		respondError(c, http.StatusInternalServerError, "could not list users")
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, user := range users {
		items = append(items, sanitizeUser(user))
	}

	respondOK(c, http.StatusOK, gin.H{"users": items})
}

type updateStatusRequest struct {
	Status models.UserStatus `json:"status" binding:"required"`
}

// AdminUpdateUserStatus flips the approval gate. Takes effect on the
// account's next request, not at token expiry.
func (h HandlerSet) AdminUpdateUserStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if !models.ValidStatus(req.Status) {
		respondError(c, http.StatusBadRequest, "unknown status")
		return
	}

	id := c.Param("id")
	if err := h.users.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Str("user_id", id).Msg("status update failed")
		respondError(c, http.StatusInternalServerError, "status update failed")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"message": "status updated"})
}

type updateRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required"`
}

func (h HandlerSet) AdminUpdateUserRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if !models.ValidRole(req.Role) {
		respondError(c, http.StatusBadRequest, "unknown role")
		return
	}

	id := c.Param("id")
	if err := h.users.UpdateRole(c.Request.Context(), id, req.Role); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Str("user_id", id).Msg("role update failed")
		respondError(c, http.StatusInternalServerError, "role update failed")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"message": "role updated"})
}
