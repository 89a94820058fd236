package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mescore/api/internal/ids"
	"mescore/api/internal/models"
	"mescore/api/internal/repository"
)

type equipmentRequest struct {
	LineID string                 `json:"lineId" binding:"required"`
	Name   string                 `json:"name" binding:"required"`
	Model  string                 `json:"model"`
	Status models.EquipmentStatus `json:"status"`
}

type equipmentResponse struct {
	ID        string    `json:"id"`
	LineID    string    `json:"lineId"`
	Name      string    `json:"name"`
	Model     string    `json:"model"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func equipmentToResponse(eq models.Equipment) equipmentResponse {
	return equipmentResponse{
		ID:        eq.ID,
		LineID:    eq.LineID,
		Name:      eq.Name,
		Model:     eq.Model,
		Status:    string(eq.Status),
		CreatedAt: eq.CreatedAt,
		UpdatedAt: eq.UpdatedAt,
	}
}

func (h HandlerSet) ListEquipment(c *gin.Context) {
	list, err := h.plant.ListEquipment(c.Request.Context(), c.Query("lineId"))
	if err != nil {
		h.log.Error().Err(err).Msg("list equipment failed")
		respondError(c, http.StatusInternalServerError, "could not list equipment")
		return
	}

	items := make([]equipmentResponse, 0, len(list))
	for _, eq := range list {
		items = append(items, equipmentToResponse(eq))
	}
	respondOK(c, http.StatusOK, gin.H{"equipment": items})
}

func (h HandlerSet) CreateEquipment(c *gin.Context) {
	var req equipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	status := req.Status
	if status == "" {
		status = models.EquipmentStatusIdle
	}
	if !models.ValidEquipmentStatus(status) {
		respondError(c, http.StatusBadRequest, "unknown equipment status")
		return
	}

	if _, err := h.plant.GetLine(c.Request.Context(), req.LineID); err != nil {
		if errors.Is(err, repository.ErrLineNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("get line failed")
		respondError(c, http.StatusInternalServerError, "could not load line")
		return
	}

	eq := models.Equipment{
		ID:     ids.New(),
		LineID: req.LineID,
		Name:   req.Name,
		Model:  req.Model,
		Status: status,
	}
	if err := h.plant.CreateEquipment(c.Request.Context(), eq); err != nil {
		h.log.Error().Err(err).Msg("create equipment failed")
		respondError(c, http.StatusInternalServerError, "could not create equipment")
		return
	}

	respondOK(c, http.StatusCreated, gin.H{"equipment": equipmentToResponse(eq)})
}

func (h HandlerSet) UpdateEquipment(c *gin.Context) {
	var req equipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if req.Status != "" && !models.ValidEquipmentStatus(req.Status) {
		respondError(c, http.StatusBadRequest, "unknown equipment status")
		return
	}

	eq, err := h.plant.GetEquipment(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrEquipmentNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("get equipment failed")
		respondError(c, http.StatusInternalServerError, "could not load equipment")
		return
	}

	eq.Name = req.Name
	eq.Model = req.Model
	if req.Status != "" {
		eq.Status = req.Status
	}

	if err := h.plant.UpdateEquipment(c.Request.Context(), eq); err != nil {
		h.log.Error().Err(err).Msg("update equipment failed")
		respondError(c, http.StatusInternalServerError, "could not update equipment")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"equipment": equipmentToResponse(eq)})
}

type equipmentStatusRequest struct {
	Status models.EquipmentStatus `json:"status" binding:"required"`
}

func (h HandlerSet) UpdateEquipmentStatus(c *gin.Context) {
	var req equipmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if !models.ValidEquipmentStatus(req.Status) {
		respondError(c, http.StatusBadRequest, "unknown equipment status")
		return
	}

	if err := h.plant.UpdateEquipmentStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		if errors.Is(err, repository.ErrEquipmentNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("equipment status update failed")
		respondError(c, http.StatusInternalServerError, "could not update status")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"message": "status updated"})
}
