package errors

import "errors"

var (
	ErrNotFound  = errors.New("parking location not found")
	ErrInvalidID = errors.New("invalid parking location ID format")
)
