package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError with the same code, so sentinel
// values such as process.ErrTimeout match any error of that code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// Sentinel returns a message-less AppError usable as an errors.Is target.
func Sentinel(code ErrorCode) *AppError {
	return &AppError{Code: code}
}

// --- Common Error Constructors ---

// Precondition creates an AppError for a call made while the adapter is not ready for it.
func Precondition(message string) *AppError {
	return &AppError{Code: ErrCodePrecondition, Message: message}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: reason, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// ResourceUnavailable creates an AppError for a local file that cannot be used.
func ResourceUnavailable(path, message string) *AppError {
	return &AppError{
		Code: ErrCodeResourceUnavailable, Message: message,
		Details: map[string]any{"path": path},
	}
}

// ProcessFailed creates an AppError for a subprocess that could not complete.
// A non-empty stderr is kept in the details.
func ProcessFailed(message, stderr string) *AppError {
	e := &AppError{Code: ErrCodeProcess, Message: message, Retryable: true}
	if stderr != "" {
		e.WithDetail("stderr", stderr)
	}
	return e
}

// Timeout creates a new AppError for an operation that exceeded its deadline.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("%s exceeded its timeout", operation),
		Retryable: true, Details: map[string]any{"operation": operation},
	}
}

// Protocol creates an AppError for a response that violates the expected protocol.
func Protocol(message string) *AppError {
	return &AppError{Code: ErrCodeProtocol, Message: message}
}

// Encoding creates an AppError for a payload that cannot be serialized.
func Encoding(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeEncoding, Message: message, Cause: cause}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err wraps an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
