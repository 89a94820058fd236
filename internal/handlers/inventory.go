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

type inventoryItemRequest struct {
	SKU      string `json:"sku" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Unit     string `json:"unit"`
	Quantity int    `json:"quantity" binding:"min=0"`
}

type inventoryItemResponse struct {
	ID        string    `json:"id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func inventoryItemToResponse(item models.InventoryItem) inventoryItemResponse {
	return inventoryItemResponse{
		ID:        item.ID,
		SKU:       item.SKU,
		Name:      item.Name,
		Unit:      item.Unit,
		Quantity:  item.Quantity,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func (h HandlerSet) ListInventory(c *gin.Context) {
	items, err := h.inventory.ListItems(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list inventory failed")
		respondError(c, http.StatusInternalServerError, "could not list inventory")
		return
	}

	list := make([]inventoryItemResponse, 0, len(items))
	for _, item := range items {
		list = append(list, inventoryItemToResponse(item))
	}
	respondOK(c, http.StatusOK, gin.H{"items": list})
}

func (h HandlerSet) CreateInventoryItem(c *gin.Context) {
	var req inventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	unit := req.Unit
	if unit == "" {
		unit = "ea"
	}

	item := models.InventoryItem{
		ID:       ids.New(),
		SKU:      req.SKU,
		Name:     req.Name,
		Unit:     unit,
		Quantity: req.Quantity,
	}
	if err := h.inventory.CreateItem(c.Request.Context(), item); err != nil {
		if errors.Is(err, repository.ErrSKUTaken) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("create inventory item failed")
		respondError(c, http.StatusInternalServerError, "could not create item")
		return
	}

	respondOK(c, http.StatusCreated, gin.H{"item": inventoryItemToResponse(item)})
}

type adjustmentRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

func (h HandlerSet) AdjustInventory(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req adjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	item, err := h.inventory.Adjust(c.Request.Context(), models.InventoryAdjustment{
		ID:         ids.New(),
		ItemID:     c.Param("id"),
		Delta:      req.Delta,
		Reason:     req.Reason,
		AdjustedBy: user.ID,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrItemNotFound):
			respondError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, repository.ErrInsufficientStock):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			h.log.Error().Err(err).Msg("inventory adjustment failed")
			respondError(c, http.StatusInternalServerError, "adjustment failed")
		}
		return
	}

	respondOK(c, http.StatusOK, gin.H{"item": inventoryItemToResponse(item)})
}

type adjustmentResponse struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"itemId"`
	Delta      int       `json:"delta"`
	Reason     string    `json:"reason"`
	AdjustedBy string    `json:"adjustedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (h HandlerSet) ListAdjustments(c *gin.Context) {
	limit, offset := pagination(c)

	adjustments, err := h.inventory.ListAdjustments(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("list adjustments failed")
		respondError(c, http.StatusInternalServerError, "could not list adjustments")
		return
	}

	items := make([]adjustmentResponse, 0, len(adjustments))
	for _, adj := range adjustments {
		items = append(items, adjustmentResponse{
			ID:         adj.ID,
			ItemID:     adj.ItemID,
			Delta:      adj.Delta,
			Reason:     adj.Reason,
			AdjustedBy: adj.AdjustedBy,
			CreatedAt:  adj.CreatedAt,
		})
	}
	respondOK(c, http.StatusOK, gin.H{"adjustments": items})
}
