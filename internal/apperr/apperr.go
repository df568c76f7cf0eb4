// Package apperr defines the error taxonomy shared across the service.
//
// Four tiers: not-found (missing or not owned by the caller), validation
// (malformed input or illegal transition, message is user-facing),
// transient (network/storage failure), and internal (everything else).
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entity is missing or does not belong to
// the requesting user. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("not found")

// ValidationError carries a message safe to show to the end user.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// TransientError wraps an I/O failure (HTTP call, database statement) that
// a later retry of the same operation may not hit.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as a TransientError. Returns nil for a nil err.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Op: op, Err: err}
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTransient reports whether err is a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
