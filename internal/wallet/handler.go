package wallet

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/haulport/logistics-backend/pkg/common"
	"github.com/haulport/logistics-backend/pkg/middleware"
	"github.com/haulport/logistics-backend/pkg/pagination"
)

// Handler handles wallet HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new wallet handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetBalance returns the caller's wallet balance
// GET /api/v1/wallet/balance
func (h *Handler) GetBalance(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	balance, err := h.service.GetBalance(c.Request.Context(), userID)
	if err != nil {
		common.HandleServiceError(c, err, "failed to get wallet balance")
		return
	}

	common.SuccessResponse(c, balance)
}

// GetTransactions returns the caller's ledger entries
// GET /api/v1/wallet/transactions?limit=20&offset=0
func (h *Handler) GetTransactions(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	params := pagination.ParseParams(c)

	transactions, total, err := h.service.GetTransactions(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		common.HandleServiceError(c, err, "failed to list transactions")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, gin.H{"transactions": transactions}, meta)
}

// CheckConsistency verifies a user's wallet against the ledger (admin)
// GET /api/v1/admin/wallets/:user_id/consistency
func (h *Handler) CheckConsistency(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}

	report, err := h.service.CheckConsistency(c.Request.Context(), userID)
	if err != nil {
		common.HandleServiceError(c, err, "failed to check wallet consistency")
		return
	}

	common.SuccessResponse(c, report)
}
