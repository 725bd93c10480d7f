package dispatch

import "errors"

var (
	ErrValidation         = errors.New("invalid request")
	ErrNotFound           = errors.New("ticket not found")
	ErrUnauthorized       = errors.New("not authorized for this ticket")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrEmptyQueue         = errors.New("no waiting tickets")
	ErrAllocationConflict = errors.New("could not allocate a ticket number")
)
