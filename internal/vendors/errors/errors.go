package errors

import "errors"

var (
	ErrNotFound = errors.New("vendor profile not found")

	ErrInvalidID = errors.New("invalid vendor profile ID format")

	ErrDuplicate = errors.New("vendor profile already exists for this account")
)
