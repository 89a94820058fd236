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

type qualityCheckRequest struct {
	WorkOrderID string               `json:"workOrderId" binding:"required"`
	Result      models.QualityResult `json:"result" binding:"required"`
	Notes       string               `json:"notes"`
}

type qualityCheckResponse struct {
	ID          string    `json:"id"`
	WorkOrderID string    `json:"workOrderId"`
	CheckedBy   string    `json:"checkedBy"`
	Result      string    `json:"result"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
}

func qualityCheckToResponse(check models.QualityCheck) qualityCheckResponse {
	return qualityCheckResponse{
		ID:          check.ID,
		WorkOrderID: check.WorkOrderID,
		CheckedBy:   check.CheckedBy,
		Result:      string(check.Result),
		Notes:       check.Notes,
		CreatedAt:   check.CreatedAt,
	}
}

func (h HandlerSet) CreateQualityCheck(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req qualityCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if !models.ValidQualityResult(req.Result) {
		respondError(c, http.StatusBadRequest, "unknown quality result")
		return
	}

	if _, err := h.orders.GetByID(c.Request.Context(), req.WorkOrderID); err != nil {
		if errors.Is(err, repository.ErrWorkOrderNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("get work order failed")
		respondError(c, http.StatusInternalServerError, "could not load work order")
		return
	}

	check := models.QualityCheck{
		ID:          ids.New(),
		WorkOrderID: req.WorkOrderID,
		CheckedBy:   user.ID,
		Result:      req.Result,
		Notes:       req.Notes,
	}
	if err := h.quality.Create(c.Request.Context(), check); err != nil {
		h.log.Error().Err(err).Msg("create quality check failed")
		respondError(c, http.StatusInternalServerError, "could not record quality check")
		return
	}

	respondOK(c, http.StatusCreated, gin.H{"qualityCheck": qualityCheckToResponse(check)})
}

func (h HandlerSet) ListQualityChecks(c *gin.Context) {
	limit, offset := pagination(c)

	checks, err := h.quality.List(c.Request.Context(), c.Query("workOrderId"), limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("list quality checks failed")
		respondError(c, http.StatusInternalServerError, "could not list quality checks")
		return
	}

	items := make([]qualityCheckResponse, 0, len(checks))
	for _, check := range checks {
		items = append(items, qualityCheckToResponse(check))
	}
	respondOK(c, http.StatusOK, gin.H{"qualityChecks": items})
}
