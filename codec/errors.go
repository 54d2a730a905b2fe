package codec

import "errors"

// Sentinel errors
var (
	// ErrNotFound is returned when a payload file does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a save target or registry entry already
	// exists and overwriting was not allowed.
	ErrConflict = errors.New("conflict")

	// ErrUnsupported is returned for unknown extensions, payload types a
	// codec cannot encode, and codecs whose capability is not enabled.
	ErrUnsupported = errors.New("unsupported")

	// ErrMalformed is returned when stored content cannot be decoded into
	// the shape the codec expects.
	ErrMalformed = errors.New("malformed")

	// ErrIsDir is returned when a save target is a directory.
	ErrIsDir = errors.New("path is a directory")
)
