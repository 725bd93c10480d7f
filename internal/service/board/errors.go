package board

import "errors"

var (
	ErrValidation   = errors.New("invalid board update")
	ErrNotFound     = errors.New("service point not found")
	ErrUnauthorized = errors.New("not authorized to update the board")
	ErrUnavailable  = errors.New("board storage unavailable")
)
