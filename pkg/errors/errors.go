// Package errors provides structured error types for the bomend application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - CONFIG_*: structural problems in the enrichment plan
//   - COMPAT_*: plan entries that do not resolve against the document
//   - NETWORK/TIMEOUT/RATE_LIMITED: lookup transport failures; these stay
//     inside the lookup path and are never surfaced by the runner
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfigDuplicateTarget, "duplicate ref %q", ref)
//	if errors.Is(err, errors.ErrCodeConfigDuplicateTarget) {
//	    // Handle plan error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Enrichment plan (configuration) errors
	ErrCodeConfigInvalid         Code = "CONFIG_INVALID"
	ErrCodeConfigMissingTarget   Code = "CONFIG_MISSING_TARGET"
	ErrCodeConfigDuplicateTarget Code = "CONFIG_DUPLICATE_TARGET"
	ErrCodeConfigAmbiguousSource Code = "CONFIG_AMBIGUOUS_SOURCE"
	ErrCodeConfigUnknownProvider Code = "CONFIG_UNKNOWN_PROVIDER"

	// Compatibility errors (plan does not match the document)
	ErrCodeCompatTargetNotFound Code = "COMPAT_TARGET_NOT_FOUND"

	// Document errors
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidPURL     Code = "INVALID_PURL"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsConfig reports whether err is a structural plan error.
func IsConfig(err error) bool {
	switch GetCode(err) {
	case ErrCodeConfigInvalid, ErrCodeConfigMissingTarget,
		ErrCodeConfigDuplicateTarget, ErrCodeConfigAmbiguousSource,
		ErrCodeConfigUnknownProvider:
		return true
	}
	return false
}

// IsCompatibility reports whether err is a plan-vs-document mismatch.
func IsCompatibility(err error) bool {
	return GetCode(err) == ErrCodeCompatTargetNotFound
}

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
	Message    string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
