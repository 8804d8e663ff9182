package payments

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haulport/logistics-backend/pkg/common"
	"github.com/haulport/logistics-backend/pkg/middleware"
)

// Handler handles payment HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new payment handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Initialize starts payment collection for an order
// POST /api/v1/payments/initialize
func (h *Handler) Initialize(c *gin.Context) {
	customerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req InitializeRequest
	if err := middleware.ValidateJSON(c, &req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	intent, err := h.service.Initialize(c.Request.Context(), customerID, &req)
	if err != nil {
		common.HandleServiceError(c, err, "failed to initialize payment")
		return
	}

	common.CreatedResponse(c, intent)
}

// Verify re-checks a charge with the gateway
// GET /api/v1/payments/:reference/verify
func (h *Handler) Verify(c *gin.Context) {
	intent, err := h.service.Verify(c.Request.Context(), c.Param("reference"))
	if err != nil {
		common.HandleServiceError(c, err, "failed to verify payment")
		return
	}

	common.SuccessResponse(c, intent)
}

// CardWebhook receives Stripe events. Unauthenticated; trust comes from
// the signature header.
// POST /api/v1/webhooks/card
func (h *Handler) CardWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "failed to read webhook body")
		return
	}

	if err := h.service.HandleCardWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		common.HandleServiceError(c, err, "failed to process webhook")
		return
	}

	c.Status(http.StatusOK)
}
