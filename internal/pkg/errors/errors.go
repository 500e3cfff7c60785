package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNoInputs means a pipeline could not derive a single prediction input
	// from the student profile.
	ErrNoInputs = errors.New("no prediction inputs could be generated")
)
