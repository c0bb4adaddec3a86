// Package errors provides error handling for seekwell.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrNoSuchThread) {
//	    // handle unknown thread
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is         = crdb.Is
	IsAny      = crdb.IsAny
	As         = crdb.As
	Unwrap     = crdb.Unwrap
	UnwrapOnce = crdb.UnwrapOnce
	UnwrapAll  = crdb.UnwrapAll
)

// Common sentinel errors for use across seekwell.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNoSuchThread indicates no checkpoint exists for the given thread id
	ErrNoSuchThread = New("no such thread")

	// ErrNotSuspended indicates a resume was attempted on a thread that is
	// not currently awaiting input
	ErrNotSuspended = New("thread is not suspended")

	// ErrValidation indicates a derived value failed validation (e.g. a
	// search query with empty fields) and the run cannot proceed
	ErrValidation = New("validation failed")

	// ErrInferenceMalformed indicates an inference response could not be
	// parsed into the expected shape
	ErrInferenceMalformed = New("malformed inference response")

	// ErrSourceUnavailable indicates a job source failed for a page; the
	// page contributes empty results rather than failing the run
	ErrSourceUnavailable = New("job source unavailable")
)

// IsNoSuchThread checks if an error is or wraps ErrNoSuchThread
func IsNoSuchThread(err error) bool {
	return err != nil && Is(err, ErrNoSuchThread)
}

// IsNotSuspended checks if an error is or wraps ErrNotSuspended
func IsNotSuspended(err error) bool {
	return err != nil && Is(err, ErrNotSuspended)
}

// IsValidation checks if an error is or wraps ErrValidation
func IsValidation(err error) bool {
	return err != nil && Is(err, ErrValidation)
}

// IsInferenceMalformed checks if an error is or wraps ErrInferenceMalformed
func IsInferenceMalformed(err error) bool {
	return err != nil && Is(err, ErrInferenceMalformed)
}

// NewValidationError creates a validation error with a formatted message
func NewValidationError(format string, args ...interface{}) error {
	return Wrap(ErrValidation, Newf(format, args...).Error())
}

// NewInferenceMalformedError creates a malformed-inference error with a formatted message
func NewInferenceMalformedError(format string, args ...interface{}) error {
	return Wrap(ErrInferenceMalformed, Newf(format, args...).Error())
}
