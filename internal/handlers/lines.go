package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mescore/api/internal/ids"
	"mescore/api/internal/middleware"
	"mescore/api/internal/models"
	"mescore/api/internal/repository"
)

type lineRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description"`
	Status      models.LineStatus `json:"status"`
}

type lineResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func lineToResponse(line models.ProductionLine) lineResponse {
	return lineResponse{
		ID:          line.ID,
		Name:        line.Name,
		Description: line.Description,
		Status:      string(line.Status),
		CreatedAt:   line.CreatedAt,
		UpdatedAt:   line.UpdatedAt,
	}
}

func (h HandlerSet) ListLines(c *gin.Context) {
	lines, err := h.plant.ListLines(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list lines failed")
		respondError(c, http.StatusInternalServerError, "could not list lines")
		return
	}

	items := make([]lineResponse, 0, len(lines))
	for _, line := range lines {
		items = append(items, lineToResponse(line))
	}
	respondOK(c, http.StatusOK, gin.H{"lines": items})
}

// LineBoard sits behind OptionalAuth: anonymous callers see only names and
// statuses, authenticated callers the full records.
func (h HandlerSet) LineBoard(c *gin.Context) {
	lines, err := h.plant.ListLines(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("line board failed")
		respondError(c, http.StatusInternalServerError, "could not load board")
		return
	}

	if _, authed := middleware.CurrentUser(c); authed {
		items := make([]lineResponse, 0, len(lines))
		for _, line := range lines {
			items = append(items, lineToResponse(line))
		}
		respondOK(c, http.StatusOK, gin.H{"lines": items})
		return
	}

	items := make([]gin.H, 0, len(lines))
	for _, line := range lines {
		items = append(items, gin.H{
			"name":   line.Name,
			"status": string(line.Status),
		})
	}
	respondOK(c, http.StatusOK, gin.H{"lines": items})
}

func (h HandlerSet) GetLine(c *gin.Context) {
	line, err := h.plant.GetLine(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrLineNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("get line failed")
		respondError(c, http.StatusInternalServerError, "could not load line")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"line": lineToResponse(line)})
}

func (h HandlerSet) CreateLine(c *gin.Context) {
	var req lineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	status := req.Status
	if status == "" {
		status = models.LineStatusStopped
	}
	if !models.ValidLineStatus(status) {
		respondError(c, http.StatusBadRequest, "unknown line status")
		return
	}

	line := models.ProductionLine{
		ID:          ids.New(),
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
	}
	if err := h.plant.CreateLine(c.Request.Context(), line); err != nil {
		h.log.Error().Err(err).Msg("create line failed")
		respondError(c, http.StatusInternalServerError, "could not create line")
		return
	}

	respondOK(c, http.StatusCreated, gin.H{"line": lineToResponse(line)})
}

func (h HandlerSet) UpdateLine(c *gin.Context) {
	var req lineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if req.Status != "" && !models.ValidLineStatus(req.Status) {
		respondError(c, http.StatusBadRequest, "unknown line status")
		return
	}

	line, err := h.plant.GetLine(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrLineNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("get line failed")
		respondError(c, http.StatusInternalServerError, "could not load line")
		return
	}

	line.Name = req.Name
	line.Description = req.Description
	if req.Status != "" {
		line.Status = req.Status
	}

	if err := h.plant.UpdateLine(c.Request.Context(), line); err != nil {
		h.log.Error().Err(err).Msg("update line failed")
		respondError(c, http.StatusInternalServerError, "could not update line")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"line": lineToResponse(line)})
}
