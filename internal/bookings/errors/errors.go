package errors

import "errors"

var (
	ErrNotFound  = errors.New("booking not found")
	ErrInvalidID = errors.New("invalid booking ID format")
)
