package errors

import "net/http"

// Kind classifies an AppError so callers can branch on the failure class
// without comparing HTTP codes.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindUpstream     Kind = "upstream"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal"
)

// AppError is a custom error type that carries a failure class and an
// HTTP status code
type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// NewAppError creates a new AppError
func NewAppError(kind Kind, code int, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Common errors
var (
	ErrInvalidRequest = NewAppError(KindValidation, http.StatusBadRequest, "Invalid request parameters")
	ErrUnauthorized   = NewAppError(KindUnauthorized, http.StatusUnauthorized, "Unauthorized access")
	ErrNotFound       = NewAppError(KindNotFound, http.StatusNotFound, "Resource not found")
	ErrInternalServer = NewAppError(KindInternal, http.StatusInternalServerError, "Internal server error")
	ErrRateLimit      = NewAppError(KindValidation, http.StatusTooManyRequests, "Rate limit exceeded")
)

// Helper constructors for the failure classes the services raise
func Validation(msg string) *AppError {
	return NewAppError(KindValidation, http.StatusBadRequest, msg)
}

func NotFound(msg string) *AppError {
	return NewAppError(KindNotFound, http.StatusNotFound, msg)
}

func Upstream(msg string) *AppError {
	return NewAppError(KindUpstream, http.StatusBadGateway, msg)
}

func Conflict(msg string) *AppError {
	return NewAppError(KindConflict, http.StatusConflict, msg)
}

func Unauthorized(msg string) *AppError {
	return NewAppError(KindUnauthorized, http.StatusUnauthorized, msg)
}

func Internal(msg string) *AppError {
	return NewAppError(KindInternal, http.StatusInternalServerError, msg)
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Kind == kind
}
