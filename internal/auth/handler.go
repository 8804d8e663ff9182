package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haulport/logistics-backend/pkg/common"
	"github.com/haulport/logistics-backend/pkg/middleware"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register creates a new account
// POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := middleware.ValidateJSON(c, &req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		common.HandleServiceError(c, err, "failed to register")
		return
	}

	common.CreatedResponse(c, user)
}

// Login exchanges credentials for a token
// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := middleware.ValidateJSON(c, &req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		common.HandleServiceError(c, err, "failed to login")
		return
	}

	common.SuccessResponse(c, resp)
}

// Me returns the caller's account
// GET /api/v1/auth/me
func (h *Handler) Me(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		common.HandleServiceError(c, err, "failed to get profile")
		return
	}

	common.SuccessResponse(c, user)
}
