package errors

import "errors"

var (
	ErrNotFound  = errors.New("timeline item not found")
	ErrInvalidID = errors.New("invalid timeline item ID format")
)
