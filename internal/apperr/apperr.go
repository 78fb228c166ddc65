// Package apperr defines the error taxonomy shared across the engine.
//
// Core writes (RSVP/check-in upserts, status transitions) propagate these to
// the caller. Side-effect failures are logged and swallowed and therefore
// never appear here.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no acting user could be resolved.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound means a referenced session/squad/record is missing on a
	// lookup expected to succeed.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the actor is not allowed to perform the action,
	// e.g. confirming a session in a squad they do not lead.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError rejects malformed input (recurrence rules, payloads)
// before any write is issued.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// Validation builds a ValidationError for a named field.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Storage wraps an error from the storage layer. The underlying error is
// surfaced verbatim through Unwrap; callers match with errors.Is/As.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("storage: %s: %w", op, err)
}
