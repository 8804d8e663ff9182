package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		name           string
		queryString    string
		expectedLimit  int
		expectedOffset int
	}{
		{
			name:           "no params uses defaults",
			queryString:    "",
			expectedLimit:  DefaultLimit,
			expectedOffset: DefaultOffset,
		},
		{
			name:           "valid limit and offset",
			queryString:    "limit=10&offset=20",
			expectedLimit:  10,
			expectedOffset: 20,
		},
		{
			name:           "zero limit uses default",
			queryString:    "limit=0",
			expectedLimit:  DefaultLimit,
			expectedOffset: DefaultOffset,
		},
		{
			name:           "negative limit uses default",
			queryString:    "limit=-10",
			expectedLimit:  DefaultLimit,
			expectedOffset: DefaultOffset,
		},
		{
			name:           "limit exceeds max is capped",
			queryString:    "limit=200",
			expectedLimit:  MaxLimit,
			expectedOffset: DefaultOffset,
		},
		{
			name:           "negative offset uses default",
			queryString:    "offset=-10",
			expectedLimit:  DefaultLimit,
			expectedOffset: DefaultOffset,
		},
		{
			name:           "non-numeric params use defaults",
			queryString:    "limit=abc&offset=xyz",
			expectedLimit:  DefaultLimit,
			expectedOffset: DefaultOffset,
		},
		{
			name:           "large offset",
			queryString:    "offset=10000",
			expectedLimit:  DefaultLimit,
			expectedOffset: 10000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest("GET", "/?"+tt.queryString, nil)

			params := ParseParams(c)

			if params.Limit != tt.expectedLimit {
				t.Errorf("Limit = %d, want %d", params.Limit, tt.expectedLimit)
			}
			if params.Offset != tt.expectedOffset {
				t.Errorf("Offset = %d, want %d", params.Offset, tt.expectedOffset)
			}
		})
	}
}

func TestBuildMeta(t *testing.T) {
	tests := []struct {
		name               string
		limit              int
		offset             int
		total              int64
		expectedTotalPages int64
	}{
		{
			name:               "exact pages",
			limit:              20,
			offset:             0,
			total:              100,
			expectedTotalPages: 5,
		},
		{
			name:               "partial last page",
			limit:              10,
			offset:             0,
			total:              25,
			expectedTotalPages: 3,
		},
		{
			name:               "no items",
			limit:              10,
			offset:             0,
			total:              0,
			expectedTotalPages: 0,
		},
		{
			name:               "zero limit",
			limit:              0,
			offset:             0,
			total:              100,
			expectedTotalPages: 0,
		},
		{
			name:               "limit greater than total",
			limit:              50,
			offset:             0,
			total:              10,
			expectedTotalPages: 1,
		},
		{
			name:               "one item over page",
			limit:              10,
			offset:             0,
			total:              11,
			expectedTotalPages: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := BuildMeta(tt.limit, tt.offset, tt.total)

			if meta.Limit != tt.limit {
				t.Errorf("Limit = %d, want %d", meta.Limit, tt.limit)
			}
			if meta.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d", meta.Offset, tt.offset)
			}
			if meta.Total != tt.total {
				t.Errorf("Total = %d, want %d", meta.Total, tt.total)
			}
			if meta.TotalPages != tt.expectedTotalPages {
				t.Errorf("TotalPages = %d, want %d", meta.TotalPages, tt.expectedTotalPages)
			}
		})
	}
}
