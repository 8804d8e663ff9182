package orders

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/haulport/logistics-backend/pkg/common"
	"github.com/haulport/logistics-backend/pkg/middleware"
	"github.com/haulport/logistics-backend/pkg/pagination"
)

// Handler handles order HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new order handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create creates a new order
// POST /api/v1/orders
func (h *Handler) Create(c *gin.Context) {
	customerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateOrderRequest
	if err := middleware.ValidateJSON(c, &req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.service.Create(c.Request.Context(), customerID, &req)
	if err != nil {
		common.HandleServiceError(c, err, "failed to create order")
		return
	}

	common.CreatedResponse(c, order)
}

// Get returns an order visible to the caller
// GET /api/v1/orders/:id
func (h *Handler) Get(c *gin.Context) {
	callerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid order id")
		return
	}

	isAdmin := middleware.GetUserRole(c) == "admin"
	order, err := h.service.Get(c.Request.Context(), orderID, callerID, isAdmin)
	if err != nil {
		common.HandleServiceError(c, err, "failed to get order")
		return
	}

	common.SuccessResponse(c, order)
}

// ListOpen lists claimable orders
// GET /api/v1/orders/open?category=DISPATCH&limit=20&offset=0
func (h *Handler) ListOpen(c *gin.Context) {
	params := pagination.ParseParams(c)

	filters := &ListFilters{}
	if category := c.Query("category"); category != "" {
		cat := ServiceCategory(category)
		filters.Category = &cat
	}

	orders, total, err := h.service.ListOpen(c.Request.Context(), filters, params.Limit, params.Offset)
	if err != nil {
		common.HandleServiceError(c, err, "failed to list open orders")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, gin.H{"orders": orders}, meta)
}

// ListMine lists the caller's orders, as customer or driver
// GET /api/v1/orders/mine?limit=20&offset=0
func (h *Handler) ListMine(c *gin.Context) {
	callerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	params := pagination.ParseParams(c)

	var orders []*Order
	var total int64
	if middleware.GetUserRole(c) == "driver" {
		orders, total, err = h.service.ListByDriver(c.Request.Context(), callerID, params.Limit, params.Offset)
	} else {
		orders, total, err = h.service.ListByCustomer(c.Request.Context(), callerID, params.Limit, params.Offset)
	}
	if err != nil {
		common.HandleServiceError(c, err, "failed to list orders")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, gin.H{"orders": orders}, meta)
}

// Claim assigns a pending order to the calling driver
// POST /api/v1/orders/:id/claim
func (h *Handler) Claim(c *gin.Context) {
	h.driverTransition(c, h.service.Claim)
}

// Start marks the caller's assigned order in progress
// POST /api/v1/orders/:id/start
func (h *Handler) Start(c *gin.Context) {
	h.driverTransition(c, h.service.Start)
}

// Complete finishes the caller's order and credits earnings
// POST /api/v1/orders/:id/complete
func (h *Handler) Complete(c *gin.Context) {
	h.driverTransition(c, h.service.Complete)
}

// Cancel cancels the caller's own pending order
// POST /api/v1/orders/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	customerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.service.Cancel(c.Request.Context(), orderID, customerID)
	if err != nil {
		common.HandleServiceError(c, err, "failed to cancel order")
		return
	}

	common.SuccessResponse(c, order)
}

// driverTransition factors the shared shape of claim/start/complete calls
func (h *Handler) driverTransition(c *gin.Context, op func(ctx context.Context, orderID, driverID uuid.UUID) (*Order, error)) {
	driverID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := op(c.Request.Context(), orderID, driverID)
	if err != nil {
		common.HandleServiceError(c, err, "operation failed")
		return
	}

	common.SuccessResponse(c, order)
}
