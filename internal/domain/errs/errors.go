// Package errs holds the generic sentinel errors shared by all domain packages.
package errs

import "errors"

var (
	// ErrNotFound is returned when a group or record does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input data is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is returned when the caller is not authenticated.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when an action is forbidden.
	ErrForbidden = errors.New("forbidden")

	// ErrConcurrentModification is returned when a version conflict occurs.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrUnavailable is returned when a backing store cannot be reached.
	ErrUnavailable = errors.New("service unavailable")
)
