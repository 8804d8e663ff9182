package reports

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/haulport/logistics-backend/pkg/common"
	"github.com/haulport/logistics-backend/pkg/middleware"
)

// Handler handles reporting HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new reports handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// parsePeriod reads from/to query params, defaulting to the last 30 days
func parsePeriod(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from, to := now.AddDate(0, 0, -30), now

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}
	return from, to, nil
}

// WalletStatement returns the caller's ledger statement
// GET /api/v1/reports/wallet?from=...&to=...
func (h *Handler) WalletStatement(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	from, to, err := parsePeriod(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "from/to must be RFC3339 timestamps")
		return
	}

	stmt, err := h.service.WalletStatement(c.Request.Context(), userID, from, to)
	if err != nil {
		common.HandleServiceError(c, err, "failed to build wallet statement")
		return
	}

	common.SuccessResponse(c, stmt)
}

// PlatformSummary returns marketplace aggregates
// GET /api/v1/admin/reports/summary?from=...&to=...
func (h *Handler) PlatformSummary(c *gin.Context) {
	from, to, err := parsePeriod(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "from/to must be RFC3339 timestamps")
		return
	}

	summary, err := h.service.PlatformSummary(c.Request.Context(), from, to)
	if err != nil {
		common.HandleServiceError(c, err, "failed to build platform summary")
		return
	}

	common.SuccessResponse(c, summary)
}
