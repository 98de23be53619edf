package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure at the point where it happens so that callers
// (HTTP handlers, the submission client, the banner renderer) switch on a
// closed set instead of inspecting error text.
type Kind int

const (
	KindUnknown      Kind = iota
	KindValidation        // bad input, nothing was sent or stored
	KindConflict          // duplicate submission rejected by the store
	KindNetwork           // transport failure or timeout
	KindServer            // configuration or persistence failure
	KindNotification      // email side-channel failed; never user-facing
)

var kindNames = [...]string{
	KindUnknown:      "unknown",
	KindValidation:   "validation",
	KindConflict:     "conflict",
	KindNetwork:      "network",
	KindServer:       "server",
	KindNotification: "notification",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind maps the wire name of a kind back to the enum. Unknown names map
// to KindUnknown.
func ParseKind(s string) Kind {
	for i, n := range kindNames {
		if n == s {
			return Kind(i)
		}
	}
	return KindUnknown
}

// Error is a classified failure. Field is set for validation errors that
// belong to a single form field.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NewValidation returns a validation error for field.
func NewValidation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

// Wrap classifies err under kind with a human-readable message.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the human-readable message of the first *Error in err's
// chain, or "" when there is none.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}
