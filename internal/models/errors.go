package models

import "errors"

// Error kinds shared by repositories, services and handlers
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ErrTrackNotAssigned is returned for track-scoped reads before the quiz is taken
var ErrTrackNotAssigned = NewError(ErrValidation, "user track not assigned yet")

// Error is a caller-facing error of a known kind.
// errors.Is(err, ErrNotFound) and friends match on Kind.
type Error struct {
	Kind    error
	Message string
}

// NewError creates an error of the given kind with a message safe to show to clients
func NewError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}
