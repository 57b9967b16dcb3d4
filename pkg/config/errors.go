package config

import "errors"

var (
	// ErrNilPointer indicates Load was called with a nil destination.
	ErrNilPointer = errors.New("config: nil pointer passed to Load")

	// ErrParsingConfig indicates environment parsing failed, typically a
	// missing required variable or an unparseable value.
	ErrParsingConfig = errors.New("config: failed to parse environment")
)
