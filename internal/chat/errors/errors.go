package errors

import "errors"

var (
	ErrDuplicate = errors.New("message already stored")
	// ErrQueued means the message could not be stored right away and was
	// handed to the outbox for a later attempt.
	ErrQueued = errors.New("message queued for retry")
)
