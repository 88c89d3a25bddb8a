// Package apperr carries machine-distinguishable error kinds across layers.
// Repositories keep their own sentinel errors; handlers wrap them (or build
// errors directly) with a Kind so the HTTP layer can pick a status code and
// clients can branch on the "error" field without parsing messages.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for callers.
type Kind int

const (
	// KindUnknown means the error carries no kind; treat as internal.
	KindUnknown Kind = iota
	// KindUnauthorized is a failed session check. Surfaced with a fixed
	// generic message, never the underlying reason.
	KindUnauthorized
	// KindValidation is malformed input: bad score range, too-short filter,
	// missing required fields.
	KindValidation
	// KindNotFound is a referenced show or vote that does not exist.
	KindNotFound
	// KindConflict is an operation blocked by existing state, such as
	// deleting a show another user has voted on.
	KindConflict
)

// String returns the wire label used in failure responses.
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to the response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is an error with a kind and a human-readable message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a kinded error with a fixed message.
func New(k Kind, msg string) error {
	return &Error{Kind: k, Msg: msg}
}

// Newf builds a kinded error with a formatted message.
func Newf(k Kind, format string, args ...any) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(k Kind, msg string, err error) error {
	return &Error{Kind: k, Msg: msg, Err: err}
}

// KindOf extracts the kind from err, or KindUnknown when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the human-readable message for err. Unauthorized errors
// always collapse to the generic session message.
func Message(err error) string {
	if KindOf(err) == KindUnauthorized {
		return "Invalid Session"
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}
