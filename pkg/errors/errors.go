// Package errors provides structured error types for the image-augment library.
//
// Augmentation failures fall into a small number of categories that callers
// need to tell apart programmatically: a malformed coordinate format string, an
// inconsistent pipeline configuration, or a label array that does not line up
// with its annotation set. Each category gets a machine-readable code so call
// sites can branch on errors.Is-style checks instead of string matching.
//
// Usage:
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "unknown format letter %q", l)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // handle conversion error
//	}
//
//	// Wrap an underlying error with context
//	err := errors.Wrap(errors.ErrCodeInvalidConfig, cause, "keypoint params")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the augmentation core.
const (
	// ErrCodeInvalidFormat marks a malformed coordinate format string or an
	// annotation record with fewer fields than its format requires.
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// ErrCodeInvalidConfig marks an inconsistent pipeline configuration,
	// detected at construction before any data is processed.
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// ErrCodeTargetMismatch marks a label array or additional-target stream
	// whose length disagrees with its annotation set.
	ErrCodeTargetMismatch Code = "TARGET_MISMATCH"

	// ErrCodeInvalidInput marks malformed call data, such as a missing image.
	ErrCodeInvalidInput Code = "INVALID_INPUT"

	// ErrCodeUnsupportedFormat marks an image file format the I/O layer
	// cannot decode or encode.
	ErrCodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"
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

// Is reports whether err carries the given error code anywhere in its chain.
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
