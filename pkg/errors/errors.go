// Package errors provides structured error types for gridboard.
//
// Errors carry a machine-readable [Code] so the CLI, the HTTP server and the
// preferences backends can agree on what went wrong without string matching:
//   - INVALID_*: input validation failures (layouts, widgets, slots, config)
//   - NOT_FOUND: a widget, preset slot or preference does not exist
//   - VERSION_CONFLICT: an optimistic-locking write lost the race
//   - CLOSED: an operation reached a component after teardown
//   - STORE_*/INTERNAL_*: backend and unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSlot, "slot %d out of range", i)
//	if errors.Is(err, errors.ErrCodeInvalidSlot) {
//	    // reject the request
//	}
//
//	err := errors.Wrap(errors.ErrCodeStore, redisErr, "read preferences for %s", user)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidLayout Code = "INVALID_LAYOUT"
	ErrCodeInvalidWidget Code = "INVALID_WIDGET"
	ErrCodeInvalidSlot   Code = "INVALID_SLOT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidKey    Code = "INVALID_KEY"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeWidgetNotFound Code = "WIDGET_NOT_FOUND"
	ErrCodePresetNotFound Code = "PRESET_NOT_FOUND"

	// Concurrency errors
	ErrCodeVersionConflict Code = "VERSION_CONFLICT"
	ErrCodeClosed          Code = "CLOSED"

	// Backend errors
	ErrCodeStore       Code = "STORE_ERROR"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// ConflictError reports an optimistic-locking failure together with the
// version currently stored, so callers can refetch and retry.
type ConflictError struct {
	Expected int64
	Actual   int64
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict: expected %d, stored %d", e.Expected, e.Actual)
}

// Code returns the error code for this error type.
func (e *ConflictError) Code() Code {
	return ErrCodeVersionConflict
}

// IsConflict reports whether err is a version conflict, either a
// *ConflictError or an *Error carrying ErrCodeVersionConflict.
func IsConflict(err error) bool {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return true
	}
	return Is(err, ErrCodeVersionConflict)
}
