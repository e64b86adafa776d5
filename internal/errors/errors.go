package errors

import (
	"fmt"
)

// Error is the structured error type used across the engine.
type Error struct {
	// Code is the unique error code (e.g., "ERR_301_FETCH_FAILED").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Parse, Acquisition, ...).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates a later full ingestion run may succeed.
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given code and message. Category,
// severity, and the retryable flag are derived from the code.
func New(code string, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates an Error from an existing error, reusing its message.
func Wrap(code string, err error) *Error {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// AcquisitionError creates a document-acquisition error with an
// HTTP-style status attached when known.
func AcquisitionError(message string, status int, cause error) *Error {
	e := New(ErrCodeFetchStatus, message, cause)
	if status > 0 {
		e.WithDetail("status", fmt.Sprintf("%d", status))
	}
	return e
}

// ParseError creates a per-unit document parse error.
func ParseError(message string, cause error) *Error {
	return New(ErrCodeUnparsableText, message, cause)
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Retryable
	}
	return false
}

// IsFatal checks if an error requires aborting the run.
func IsFatal(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Severity == SeverityFatal
	}
	return false
}
