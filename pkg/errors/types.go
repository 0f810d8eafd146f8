package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a structured error code
type ErrorCode string

const (
	// Storage errors
	ErrCodeStorage    ErrorCode = "STORAGE"
	ErrCodeValidation ErrorCode = "VALIDATION"

	// Resource errors
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Network errors
	ErrCodeNetwork ErrorCode = "NETWORK"
	ErrCodeTimeout ErrorCode = "TIMEOUT"

	// Feed errors
	ErrCodeInvalidFeed ErrorCode = "INVALID_FEED"

	// Internal errors
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// AppError represents a structured application error
type AppError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Details  map[string]interface{} `json:"details,omitempty"`
	Cause    error                  `json:"-"`
	HTTPCode int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// GetHTTPCode returns the appropriate HTTP status code
func (e *AppError) GetHTTPCode() int {
	if e.HTTPCode != 0 {
		return e.HTTPCode
	}
	return getDefaultHTTPCode(e.Code)
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		HTTPCode: getDefaultHTTPCode(code),
	}
}

// Newf creates a new AppError with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		HTTPCode: getDefaultHTTPCode(code),
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(cause error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Cause:    cause,
		HTTPCode: getDefaultHTTPCode(code),
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(cause error, code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Cause:    cause,
		HTTPCode: getDefaultHTTPCode(code),
	}
}

// getDefaultHTTPCode returns the default HTTP status code for an error code
func getDefaultHTTPCode(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyExists:
		return http.StatusConflict
	case ErrCodeValidation, ErrCodeInvalidFeed:
		return http.StatusBadRequest
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors

// StorageError creates an error for a failed filesystem operation. The
// offending path is always carried in the details.
func StorageError(path string, cause error) *AppError {
	return Wrap(cause, ErrCodeStorage, fmt.Sprintf("storage operation failed for %s", path)).
		WithDetail("path", path)
}

// ValidationFailed creates a save-time validation error
func ValidationFailed(reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("validation failed: %s", reason)).
		WithDetail("reason", reason)
}

// NetworkError creates an error for an exhausted or failed network fetch
func NetworkError(url string, cause error) *AppError {
	return Wrap(cause, ErrCodeNetwork, fmt.Sprintf("network request failed for %s", url)).
		WithDetail("url", url)
}

// NotFound creates a not found error
func NotFound(resource string, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

// AlreadyExists creates an already exists error
func AlreadyExists(resource string, id interface{}) *AppError {
	return New(ErrCodeAlreadyExists, fmt.Sprintf("%s already exists", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

// InvalidFeed creates an error for a feed that could not be parsed
func InvalidFeed(url string, cause error) *AppError {
	return Wrap(cause, ErrCodeInvalidFeed, fmt.Sprintf("invalid feed at %s", url)).
		WithDetail("url", url)
}

// Is checks if an error carries a specific code anywhere in its chain
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// GetHTTPCode extracts the HTTP status code from an error
func GetHTTPCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.GetHTTPCode()
	}
	return http.StatusInternalServerError
}

// UserMessage derives a short human-readable message for notification
// surfaces. This is a pattern-matching heuristic over error codes, not a
// structured error-code mapping.
func UserMessage(err error) string {
	switch GetCode(err) {
	case ErrCodeAlreadyExists:
		return "You are already subscribed to this podcast"
	case ErrCodeInvalidFeed, ErrCodeValidation:
		return "This does not look like a valid podcast feed"
	case ErrCodeTimeout:
		return "The request timed out, try again later"
	case ErrCodeNetwork:
		return "Could not reach the podcast server"
	case ErrCodeNotFound:
		return "The requested item was not found"
	default:
		return "Something went wrong"
	}
}
