package drivers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haulport/logistics-backend/pkg/common"
	"github.com/haulport/logistics-backend/pkg/middleware"
)

// Handler handles driver HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new driver handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetProfile returns the caller's driver profile
// GET /api/v1/drivers/me
func (h *Handler) GetProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	driver, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		common.HandleServiceError(c, err, "failed to get driver profile")
		return
	}

	common.SuccessResponse(c, driver)
}

// SetOnline toggles the caller's online flag
// POST /api/v1/drivers/me/online
func (h *Handler) SetOnline(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SetOnlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	driver, err := h.service.SetOnline(c.Request.Context(), userID, req.Online)
	if err != nil {
		common.HandleServiceError(c, err, "failed to update online status")
		return
	}

	common.SuccessResponse(c, driver)
}

// Heartbeat refreshes the caller's presence TTL
// POST /api/v1/drivers/me/heartbeat
func (h *Handler) Heartbeat(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.service.Heartbeat(c.Request.Context(), userID); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to record heartbeat")
		return
	}

	common.SuccessResponse(c, gin.H{"ok": true})
}

// SubmitKYC submits identity verification inputs
// POST /api/v1/drivers/me/kyc
func (h *Handler) SubmitKYC(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SubmitKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	driver, err := h.service.SubmitKYC(c.Request.Context(), userID, &req)
	if err != nil {
		common.HandleServiceError(c, err, "failed to submit verification")
		return
	}

	common.SuccessResponse(c, driver)
}
