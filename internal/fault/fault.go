// Package fault defines the domain error taxonomy shared by the quote and
// offer subsystems. Every error returned across a service boundary carries a
// Kind so transport layers can map it to a precise status code and callers
// can decide whether a retry is safe.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error.
type Kind string

const (
	// KindInvalid marks malformed or missing request fields. Recoverable by
	// caller correction.
	KindInvalid Kind = "invalid"
	// KindNotFound marks a reference to a vehicle or offer that does not exist.
	KindNotFound Kind = "not_found"
	// KindConflict marks a duplicate active offer or a lost concurrent-update
	// race. Safe to retry after re-reading current state.
	KindConflict Kind = "conflict"
	// KindInvalidTransition marks an offer state-graph violation.
	KindInvalidTransition Kind = "invalid_transition"
	// KindForbidden marks an authorization failure.
	KindForbidden Kind = "forbidden"
	// KindUnavailable marks a transient persistence failure (connection loss).
	// Safe to retry with backoff: writes are idempotent or constraint-guarded.
	KindUnavailable Kind = "unavailable"
)

// Error is a classified domain error. Field carries the offending request
// field or entity id when one exists.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Invalid reports a malformed or missing input field.
func Invalid(field, msg string) *Error {
	return &Error{Kind: KindInvalid, Field: field, Msg: msg}
}

// NotFound reports a missing entity by kind and id.
func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Field: id, Msg: entity + " not found"}
}

// Conflict reports a uniqueness or concurrent-update conflict.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Msg: msg}
}

// InvalidTransition reports an offer state-graph violation, naming the
// current and requested states.
func InvalidTransition(from, to string) *Error {
	return &Error{Kind: KindInvalidTransition, Msg: fmt.Sprintf("cannot transition %s -> %s", from, to)}
}

// Forbidden reports an authorization failure.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

// Unavailable wraps a transient persistence error.
func Unavailable(err error) *Error {
	return &Error{Kind: KindUnavailable, Msg: "storage unavailable", Err: err}
}

// KindOf returns the Kind of the first *Error in the chain, or "" when the
// error is unclassified.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

// FieldOf returns the offending field of the first *Error in the chain.
func FieldOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Field
	}
	return ""
}

// MessageOf returns the client-safe message of the first *Error in the
// chain, or a generic message for unclassified errors.
func MessageOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Msg
	}
	return "internal error"
}
