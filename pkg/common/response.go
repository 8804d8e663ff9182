package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse is the standard response envelope
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// APIError is the error body of a failed response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse sends a 200 response with data
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// SuccessResponseWithStatus sends a response with data and a custom status
func SuccessResponseWithStatus(c *gin.Context, status int, data interface{}) {
	c.JSON(status, APIResponse{Success: true, Data: data})
}

// SuccessResponseWithMeta sends a 200 response with data and pagination meta
func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: meta})
}

// CreatedResponse sends a 201 response with data
func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// ErrorResponse sends an error response with a generic code
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, APIResponse{Success: false, Error: &APIError{Code: codeForStatus(status), Message: message}})
}

// AppErrorResponse sends an error response from an AppError, preserving its
// machine-readable code
func AppErrorResponse(c *gin.Context, err *AppError) {
	c.JSON(err.StatusCode, APIResponse{Success: false, Error: &APIError{Code: err.Code, Message: err.Message}})
}

// HandleServiceError maps a service error to the proper HTTP response.
// AppErrors keep their status and code; anything else becomes a 500.
func HandleServiceError(c *gin.Context, err error, fallbackMessage string) {
	if appErr, ok := AsAppError(err); ok {
		AppErrorResponse(c, appErr)
		return
	}
	ErrorResponse(c, http.StatusInternalServerError, fallbackMessage)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusServiceUnavailable:
		return CodeServiceUnavailable
	default:
		return CodeInternal
	}
}
