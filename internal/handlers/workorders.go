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
	"mescore/api/internal/security"
)

type workOrderRequest struct {
	OrderNumber string     `json:"orderNumber" binding:"required"`
	LineID      *string    `json:"lineId"`
	Product     string     `json:"product" binding:"required"`
	QtyPlanned  int        `json:"qtyPlanned" binding:"min=0"`
	QtyProduced int        `json:"qtyProduced" binding:"min=0"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
}

type workOrderResponse struct {
	ID          string     `json:"id"`
	OrderNumber string     `json:"orderNumber"`
	LineID      *string    `json:"lineId,omitempty"`
	Product     string     `json:"product"`
	QtyPlanned  int        `json:"qtyPlanned"`
	QtyProduced int        `json:"qtyProduced"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func workOrderToResponse(wo models.WorkOrder) workOrderResponse {
	return workOrderResponse{
		ID:          wo.ID,
		OrderNumber: wo.OrderNumber,
		LineID:      wo.LineID,
		Product:     wo.Product,
		QtyPlanned:  wo.QtyPlanned,
		QtyProduced: wo.QtyProduced,
		Status:      string(wo.Status),
		DueDate:     wo.DueDate,
		CreatedBy:   wo.CreatedBy,
		CreatedAt:   wo.CreatedAt,
		UpdatedAt:   wo.UpdatedAt,
	}
}

// fetchOwnedWorkOrder loads the order and applies the owner-or-admin policy.
// Managers pass as well; a plain account only sees its own orders.
func (h HandlerSet) fetchOwnedWorkOrder(c *gin.Context) (models.WorkOrder, models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return models.WorkOrder{}, models.User{}, false
	}

	wo, err := h.orders.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrWorkOrderNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return models.WorkOrder{}, models.User{}, false
		}
		h.log.Error().Err(err).Msg("get work order failed")
		respondError(c, http.StatusInternalServerError, "could not load work order")
		return models.WorkOrder{}, models.User{}, false
	}

	if !security.Allow(user.Role, user.ID, wo.CreatedBy, models.UserRoleManager) {
		respondError(c, http.StatusForbidden, "forbidden")
		return models.WorkOrder{}, models.User{}, false
	}

	return wo, user, true
}

func (h HandlerSet) ListWorkOrders(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := pagination(c)

	createdBy := ""
	if user.Role == models.UserRoleGeneral {
		createdBy = user.ID
	}

	orders, err := h.orders.List(c.Request.Context(), createdBy, limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("list work orders failed")
		respondError(c, http.StatusInternalServerError, "could not list work orders")
		return
	}

	items := make([]workOrderResponse, 0, len(orders))
	for _, wo := range orders {
		items = append(items, workOrderToResponse(wo))
	}
	respondOK(c, http.StatusOK, gin.H{"workOrders": items})
}

func (h HandlerSet) CreateWorkOrder(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req workOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	status := models.WorkOrderStatus(req.Status)
	if status == "" {
		status = models.WorkOrderStatusDraft
	}
	if !models.ValidWorkOrderStatus(status) {
		respondError(c, http.StatusBadRequest, "unknown work order status")
		return
	}

	wo := models.WorkOrder{
		ID:          ids.New(),
		OrderNumber: req.OrderNumber,
		LineID:      req.LineID,
		Product:     req.Product,
		QtyPlanned:  req.QtyPlanned,
		QtyProduced: req.QtyProduced,
		Status:      status,
		DueDate:     req.DueDate,
		CreatedBy:   user.ID,
	}

	if err := h.orders.Create(c.Request.Context(), wo); err != nil {
		if errors.Is(err, repository.ErrOrderNumberTaken) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("create work order failed")
		respondError(c, http.StatusInternalServerError, "could not create work order")
		return
	}

	respondOK(c, http.StatusCreated, gin.H{"workOrder": workOrderToResponse(wo)})
}

func (h HandlerSet) GetWorkOrder(c *gin.Context) {
	wo, _, ok := h.fetchOwnedWorkOrder(c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, gin.H{"workOrder": workOrderToResponse(wo)})
}

func (h HandlerSet) UpdateWorkOrder(c *gin.Context) {
	wo, _, ok := h.fetchOwnedWorkOrder(c)
	if !ok {
		return
	}

	var req workOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if req.Status != "" {
		status := models.WorkOrderStatus(req.Status)
		if !models.ValidWorkOrderStatus(status) {
			respondError(c, http.StatusBadRequest, "unknown work order status")
			return
		}
		wo.Status = status
	}
	wo.LineID = req.LineID
	wo.Product = req.Product
	wo.QtyPlanned = req.QtyPlanned
	wo.QtyProduced = req.QtyProduced
	wo.DueDate = req.DueDate

	if err := h.orders.Update(c.Request.Context(), wo); err != nil {
		h.log.Error().Err(err).Msg("update work order failed")
		respondError(c, http.StatusInternalServerError, "could not update work order")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"workOrder": workOrderToResponse(wo)})
}

func (h HandlerSet) DeleteWorkOrder(c *gin.Context) {
	wo, _, ok := h.fetchOwnedWorkOrder(c)
	if !ok {
		return
	}

	if err := h.orders.Delete(c.Request.Context(), wo.ID); err != nil {
		h.log.Error().Err(err).Msg("delete work order failed")
		respondError(c, http.StatusInternalServerError, "could not delete work order")
		return
	}

	c.Status(http.StatusNoContent)
}
