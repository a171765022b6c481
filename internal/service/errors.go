package service

import "errors"

// Domain errors surfaced to handlers. Handlers map these onto response
// codes with errors.Is, so wrapping with fmt.Errorf("...: %w", err) is
// safe anywhere below.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("caller does not own this resource")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")

	// Room lifecycle
	ErrRoomClosed        = errors.New("room is closed")
	ErrRoomAlreadyClosed = errors.New("room has already been closed")
	ErrNotEnrolled       = errors.New("student has not joined this room")
	ErrNoVariants        = errors.New("test has no variants to assign")
	ErrResultNotReady    = errors.New("result is not available")
	ErrUnknownQuestion   = errors.New("answer references a question outside the assigned variant")
)
