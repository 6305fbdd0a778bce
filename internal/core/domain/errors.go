package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested document was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreUnavailable indicates the record store could not be reached.
	// This is the only fatal condition in the archive core: an authoritative
	// write that fails aborts the whole operation.
	ErrStoreUnavailable = errors.New("record store unavailable")
)
