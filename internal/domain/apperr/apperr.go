// Package apperr defines the error kinds shared by every gymdesk operation.
// The transport layer maps kinds to status codes; messages are shown to staff
// as-is, so they must say what was rejected and why.
package apperr

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage error")
)

// Error carries a kind, an actionable message, and an optional cause.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

// Error returns the message, with the cause appended for storage failures.
func (e *Error) Error() string {
	if e.Cause != nil && e.Kind == ErrStorage {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Validation builds a rejected-input error.
func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

// Invalid marks a domain rule violation as a validation error, keeping it
// matchable with errors.Is. Nil stays nil.
func Invalid(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: ErrValidation, Message: err.Error(), Cause: err}
}

// Conflict builds an error for a state clash such as a duplicate open session.
func Conflict(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

// NotFound builds an error for a missing record.
func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// Storage wraps a data-access failure. The cause is kept for logging.
// Passing an error that already carries a kind returns it unchanged.
func Storage(op string, cause error) error {
	if cause == nil {
		return nil
	}
	var ae *Error
	if errors.As(cause, &ae) {
		return cause
	}
	return &Error{Kind: ErrStorage, Message: op, Cause: cause}
}

// KindOf returns the kind of err, or ErrStorage for errors without one.
func KindOf(err error) error {
	for _, k := range []error{ErrValidation, ErrConflict, ErrNotFound, ErrStorage} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrStorage
}

// Message returns the user-facing text for err.
// Storage failures never leak their cause.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}
