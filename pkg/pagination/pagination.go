package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLimit is applied when no limit query param is given
	DefaultLimit = 20
	// MaxLimit caps the page size
	MaxLimit = 100
	// DefaultOffset is applied when no offset query param is given
	DefaultOffset = 0
)

// Params holds parsed pagination parameters
type Params struct {
	Limit  int
	Offset int
}

// Meta describes a page of results
type Meta struct {
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// ParseParams extracts limit/offset from query params, applying defaults and
// the max limit cap
func ParseParams(c *gin.Context) Params {
	limit := DefaultLimit
	offset := DefaultOffset

	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return Params{Limit: limit, Offset: offset}
}

// BuildMeta builds pagination metadata for a response
func BuildMeta(limit, offset int, total int64) Meta {
	totalPages := int64(0)
	if limit > 0 {
		totalPages = (total + int64(limit) - 1) / int64(limit)
	}
	return Meta{Limit: limit, Offset: offset, Total: total, TotalPages: totalPages}
}
