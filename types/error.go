package types

import "fmt"

// ErrorCode identifies a class of error raised at the edges of the memory
// engine (façade coercion, capability boundaries, concurrency misuse).
type ErrorCode string

const (
	ErrCodeInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrCodeMissingColdObject   ErrorCode = "MISSING_COLD_OBJECT"
	ErrCodeMissingInDailyNotes ErrorCode = "MISSING_IN_DAILY_NOTES"
	ErrCodeBackendUnavailable  ErrorCode = "BACKEND_UNAVAILABLE"
	ErrCodeLoopMisuse          ErrorCode = "LOOP_MISUSE"
)

// Error is a structured error carrying a stable code, a human message, and
// an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports code equality so errors.Is(err, types.ErrInvalidInput) matches
// any *Error carrying that code, including copies produced by WithCause.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// NewError builds an Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause returns a copy of e with cause attached, leaving e itself
// untouched so package-level sentinels stay immutable across callers.
func (e *Error) WithCause(cause error) *Error {
	copied := *e
	copied.Cause = cause
	return &copied
}

// Sentinel errors for errors.Is comparisons at call sites.
var (
	ErrInvalidInput       = NewError(ErrCodeInvalidInput, "invalid input")
	ErrBackendUnavailable = NewError(ErrCodeBackendUnavailable, "backend unavailable")
	ErrLoopMisuse         = NewError(ErrCodeLoopMisuse, "blocking API called from within an active blocking call")
)

// CodeOf extracts the ErrorCode from err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}
