package domain

import "errors"

var (
	// ErrNotFound indicates that a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource with the same identity
	// already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidArgument indicates that a caller-provided value violates
	// a precondition. Descriptor validation failures wrap this error.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict indicates that a deploy request reuses the name of a
	// deployed service with a different configuration.
	ErrConflict = errors.New("conflict")
)
