// Package apperr holds the error taxonomy shared by the services and its
// mapping onto HTTP responses.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("a token is required for authentication")
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyMember is returned when inviting a user who is already in the chat.
	ErrAlreadyMember = errors.New("user already added to chat")
	// ErrNotOwnerOrMissing covers both a missing chat and a caller who does
	// not own it, so the response does not reveal which one happened.
	ErrNotOwnerOrMissing = errors.New("not authorized or couldn't find the chat")
)

// StatusSentinel is the status used for the two sentinel conditions above.
// It matches what existing clients of this API already check for.
const StatusSentinel = http.StatusTeapot

// Error carries a client-facing message and an optional status override on
// top of one of the sentinel errors.
type Error struct {
	Kind    error
	Msg     string
	Code    int
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return e.Msg + ": " + e.Wrapped.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Wrapped != nil {
		return []error{e.Kind, e.Wrapped}
	}
	return []error{e.Kind}
}

// New returns an Error of the given kind with a client-facing message.
func New(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// WithStatus returns an Error whose HTTP status differs from the kind's default.
func WithStatus(kind error, code int, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Code: code}
}

// Status maps err to an HTTP status code. Errors outside the taxonomy are 500.
// A duplicate user or chat is reported as 403, not 409: clients of this API
// treat "already exists" as a refusal.
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Code != 0 {
		return e.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict), errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrAlreadyMember), errors.Is(err, ErrNotOwnerOrMissing):
		return StatusSentinel
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text that is safe to show a client for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	for _, kind := range []error{
		ErrNotFound, ErrConflict, ErrUnauthorized, ErrForbidden,
		ErrInvalidInput, ErrAlreadyMember, ErrNotOwnerOrMissing,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal error"
}
