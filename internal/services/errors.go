package services

import "errors"

var (
	// ErrNotFound signals a missing record; handlers map it to 404.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials covers both unknown username and wrong
	// password so the two cases are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ConflictError is a uniqueness violation, either caught by the pre-check
// or translated from the database constraint.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ValidationError is rejected input that never reached the store.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
