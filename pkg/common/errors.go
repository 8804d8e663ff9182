package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes surfaced to API clients. The boundary maps
// these 1:1 so callers can tell a lost race from an illegal transition from
// a balance problem.
const (
	CodeConflict                = "conflict"
	CodeInvalidStateTransition  = "invalid_state_transition"
	CodeCapacityExceeded        = "capacity_exceeded"
	CodeInsufficientFunds       = "insufficient_funds"
	CodeInsufficientFundsPayout = "insufficient_funds_at_payout"
	CodeAlreadyProcessed        = "already_processed"
	CodeNotFound                = "not_found"
	CodeForbidden               = "forbidden"
	CodeUnauthorized            = "unauthorized"
	CodeBadRequest              = "bad_request"
	CodeInternal                = "internal_error"
	CodeServiceUnavailable      = "service_unavailable"
)

// AppError is the application error type carried from services to handlers.
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Err
}

// AsAppError extracts an *AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// NewBadRequestError creates a 400 error
func NewBadRequestError(message string, err error) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Code: CodeBadRequest, Message: message, Err: err}
}

// NewUnauthorizedError creates a 401 error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{StatusCode: http.StatusUnauthorized, Code: CodeUnauthorized, Message: message}
}

// NewForbiddenError creates a 403 error
func NewForbiddenError(message string) *AppError {
	return &AppError{StatusCode: http.StatusForbidden, Code: CodeForbidden, Message: message}
}

// NewNotFoundError creates a 404 error
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Code: CodeNotFound, Message: message, Err: err}
}

// NewConflictError creates a 409 error for lost races on conditional updates
func NewConflictError(message string) *AppError {
	return &AppError{StatusCode: http.StatusConflict, Code: CodeConflict, Message: message}
}

// NewInvalidStateError creates a 409 error for operations attempted from a
// state that does not permit them
func NewInvalidStateError(message string) *AppError {
	return &AppError{StatusCode: http.StatusConflict, Code: CodeInvalidStateTransition, Message: message}
}

// NewCapacityExceededError creates a 422 error for drivers at their
// concurrent order limit
func NewCapacityExceededError(message string) *AppError {
	return &AppError{StatusCode: http.StatusUnprocessableEntity, Code: CodeCapacityExceeded, Message: message}
}

// NewInsufficientFundsError creates a 422 error for the request-time (soft)
// balance check
func NewInsufficientFundsError(message string) *AppError {
	return &AppError{StatusCode: http.StatusUnprocessableEntity, Code: CodeInsufficientFunds, Message: message}
}

// NewInsufficientFundsAtPayoutError creates a 422 error for the payout-time
// (hard) balance check, distinct from the soft request-time failure
func NewInsufficientFundsAtPayoutError(message string) *AppError {
	return &AppError{StatusCode: http.StatusUnprocessableEntity, Code: CodeInsufficientFundsPayout, Message: message}
}

// NewInternalServerError creates a 500 error
func NewInternalServerError(message string) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Code: CodeInternal, Message: message}
}

// NewServiceUnavailableError creates a 503 error
func NewServiceUnavailableError(message string, err error) *AppError {
	return &AppError{StatusCode: http.StatusServiceUnavailable, Code: CodeServiceUnavailable, Message: message, Err: err}
}
