package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/haulport/logistics-backend/pkg/validation"
)

// ValidateJSON binds the JSON request body to req and runs struct validation
func ValidateJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return err
	}
	return validation.ValidateStruct(req)
}

// ValidateQuery binds query parameters to req and runs struct validation
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return err
	}
	return validation.ValidateStruct(req)
}
