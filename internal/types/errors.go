package types

import "fmt"

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Error code constants. Repositories and services MUST use these constants
// instead of hardcoded strings so callers can branch on failure category.
const (
	// Not found
	ErrCodeNotFoundProcess ErrorCode = "not_found_process"
	ErrCodeNotFoundUser    ErrorCode = "not_found_user"

	// Rendering
	ErrCodeTemplateNotFound ErrorCode = "template_not_found"
	ErrCodeTemplateRender   ErrorCode = "template_render_error"

	// Internal/Upstream
	ErrCodeInternalDB      ErrorCode = "internal_database_error"
	ErrCodeUpstreamStorage ErrorCode = "upstream_storage_error"
	ErrCodeUpstreamQueue   ErrorCode = "upstream_queue_error"
)

// AppError is the standard application error type used throughout the
// service. Domain errors are expressed as AppError to enable consistent
// formatting and error chain support.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given code, message, and
// optional underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
