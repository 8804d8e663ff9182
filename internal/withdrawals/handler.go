package withdrawals

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/haulport/logistics-backend/pkg/common"
	"github.com/haulport/logistics-backend/pkg/middleware"
	"github.com/haulport/logistics-backend/pkg/pagination"
)

// Handler handles withdrawal HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new withdrawal handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Request creates a withdrawal request
// POST /api/v1/withdrawals
func (h *Handler) Request(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req RequestWithdrawal
	if err := middleware.ValidateJSON(c, &req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	w, err := h.service.Request(c.Request.Context(), userID, &req)
	if err != nil {
		common.HandleServiceError(c, err, "failed to request withdrawal")
		return
	}

	common.CreatedResponse(c, w)
}

// Get returns a withdrawal visible to the caller
// GET /api/v1/withdrawals/:id
func (h *Handler) Get(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid withdrawal id")
		return
	}

	isAdmin := middleware.GetUserRole(c) == "admin"
	w, err := h.service.Get(c.Request.Context(), id, userID, isAdmin)
	if err != nil {
		common.HandleServiceError(c, err, "failed to get withdrawal")
		return
	}

	common.SuccessResponse(c, w)
}

// ListMine lists the caller's withdrawals
// GET /api/v1/withdrawals
func (h *Handler) ListMine(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	params := pagination.ParseParams(c)
	ws, total, err := h.service.ListMine(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		common.HandleServiceError(c, err, "failed to list withdrawals")
		return
	}

	common.SuccessResponseWithMeta(c, ws, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// ListPending lists withdrawals awaiting review
// GET /api/v1/admin/withdrawals/pending
func (h *Handler) ListPending(c *gin.Context) {
	params := pagination.ParseParams(c)
	ws, total, err := h.service.ListPending(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		common.HandleServiceError(c, err, "failed to list pending withdrawals")
		return
	}

	common.SuccessResponseWithMeta(c, ws, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// Review applies an admin decision to a withdrawal
// POST /api/v1/admin/withdrawals/:id/review
func (h *Handler) Review(c *gin.Context) {
	adminID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid withdrawal id")
		return
	}

	var req ReviewRequest
	if err := middleware.ValidateJSON(c, &req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	w, err := h.service.Review(c.Request.Context(), id, adminID, &req)
	if err != nil {
		common.HandleServiceError(c, err, "failed to review withdrawal")
		return
	}

	common.SuccessResponse(c, w)
}
