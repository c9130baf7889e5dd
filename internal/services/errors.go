// Package services holds the forecasting business logic between the HTTP
// handlers and the estimation core.
package services

import (
	"context"
	"errors"

	"github.com/soltixdb/arforecast/internal/analytics/forecast"
	"github.com/soltixdb/arforecast/internal/storage"
)

// Service error codes
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInvalidHorizon   = "INVALID_HORIZON"
	CodeInvalidModel     = "INVALID_MODEL"
	CodeInvalidMethod    = "INVALID_METHOD"
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeFitFailed        = "FIT_FAILED"
	CodeModelNotFound    = "MODEL_NOT_FOUND"
	CodeTimeout          = "TIMEOUT"
	CodeInternal         = "INTERNAL_ERROR"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	cause   error
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying error to errors.Is
func (e *ServiceError) Unwrap() error {
	return e.cause
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// classify maps core and storage errors onto service codes
func classify(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}

	code := CodeInternal
	switch {
	case errors.Is(err, forecast.ErrInvalidHorizon):
		code = CodeInvalidHorizon
	case errors.Is(err, forecast.ErrInvalidModel):
		code = CodeInvalidModel
	case errors.Is(err, forecast.ErrInsufficientHistory):
		code = CodeInsufficientData
	case errors.Is(err, forecast.ErrFitFailure):
		code = CodeFitFailed
	case errors.Is(err, forecast.ErrInvalidSeries),
		errors.Is(err, forecast.ErrInvalidConfidence),
		errors.Is(err, storage.ErrInvalidID):
		code = CodeInvalidRequest
	case errors.Is(err, storage.ErrModelNotFound):
		code = CodeModelNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		code = CodeTimeout
	}

	se = &ServiceError{Code: code, Message: err.Error(), cause: err}

	var fe *forecast.FitError
	if errors.As(err, &fe) {
		se.Details = map[string]interface{}{
			"method": string(fe.Method),
			"order":  fe.Order,
			"reason": fe.Reason,
		}
	}
	return se
}
