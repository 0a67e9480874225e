package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrNotFound      ErrorType = "NOT_FOUND"
	ErrForbidden     ErrorType = "FORBIDDEN"
	ErrUnauthorized  ErrorType = "UNAUTHORIZED"
	ErrUpstream      ErrorType = "UPSTREAM"
	ErrConfiguration ErrorType = "CONFIGURATION"
	ErrInvalidInput  ErrorType = "INVALID_INPUT"
	ErrInternal      ErrorType = "INTERNAL"
)

// AppError represents an application error with an HTTP-style status code
// attached for the transport layer.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode maps the error type to an HTTP status code.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrForbidden:
		return http.StatusForbidden
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrUpstream:
		return http.StatusBadGateway
	case ErrInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new AppError
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, err error) *AppError {
	return New(ErrNotFound, message, err)
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string, err error) *AppError {
	return New(ErrForbidden, message, err)
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string, err error) *AppError {
	return New(ErrUnauthorized, message, err)
}

// NewUpstreamError creates a new upstream error for non-2xx remote responses
// and decode failures.
func NewUpstreamError(message string, err error) *AppError {
	return New(ErrUpstream, message, err)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(message string, err error) *AppError {
	return New(ErrConfiguration, message, err)
}

// NewValidationError creates a new validation error
func NewValidationError(message string, err error) *AppError {
	return New(ErrInvalidInput, message, err)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return New(ErrInternal, message, err)
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool { return isType(err, ErrNotFound) }

// IsForbidden checks if the error is a forbidden error
func IsForbidden(err error) bool { return isType(err, ErrForbidden) }

// IsUnauthorized checks if the error is an unauthorized error
func IsUnauthorized(err error) bool { return isType(err, ErrUnauthorized) }

// IsUpstream checks if the error is an upstream error
func IsUpstream(err error) bool { return isType(err, ErrUpstream) }

// IsConfiguration checks if the error is a configuration error
func IsConfiguration(err error) bool { return isType(err, ErrConfiguration) }
