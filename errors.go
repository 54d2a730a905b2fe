package shard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gophersatwork/shard/codec"
)

// Sentinel errors. Errors returned by this package and by the codec
// package wrap one of these; test for them with errors.Is.
var (
	// ErrNotFound is returned when a descriptor, payload, shard id, asset
	// or split does not exist.
	ErrNotFound = codec.ErrNotFound

	// ErrConflict is returned when a save target exists and overwriting
	// was not allowed, or when an id or registry entry is already taken.
	ErrConflict = codec.ErrConflict

	// ErrUnsupported is returned for unknown extensions, loader ids and URI
	// schemes, and for codecs whose capability is not enabled.
	ErrUnsupported = codec.ErrUnsupported

	// ErrMalformed is returned when a descriptor is present but cannot be
	// used: invalid JSON, a missing required field, or a cycle.
	ErrMalformed = codec.ErrMalformed

	// ErrIsDir is returned when a save target is a directory.
	ErrIsDir = codec.ErrIsDir

	// ErrOutOfRange is returned for an index outside a Tuple or List.
	ErrOutOfRange = errors.New("index out of range")

	// ErrCorrupt is returned when a payload no longer matches the digest
	// recorded in its descriptor.
	ErrCorrupt = errors.New("payload digest mismatch")
)

// ValidationError collects every problem found while validating a
// composite, such as several children without a URI.
type ValidationError struct {
	Errors []error
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	if len(ve.Errors) == 1 {
		return fmt.Sprintf("validation failed: %v", ve.Errors[0])
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "validation failed with %d errors:\n", len(ve.Errors))
	for i, err := range ve.Errors {
		fmt.Fprintf(&buf, "  %d. %v\n", i+1, err)
	}
	return buf.String()
}

// Unwrap returns the underlying errors for use with errors.Is and errors.As.
func (ve *ValidationError) Unwrap() []error {
	return ve.Errors
}

// newValidationError creates a ValidationError from a slice of errors.
// Returns nil if the slice is empty.
func newValidationError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}
