package render

import (
	"errors"

	"media-library/internal/format"
)

var (
	// ErrInvalidOptions is returned when render options contradict each other.
	ErrInvalidOptions = errors.New("invalid render options")
	// ErrResizerMissing is returned when a derived box is needed but no
	// resizer is configured.
	ErrResizerMissing = errors.New("no resizer configured")
	// ErrUnknownFormat is format.ErrUnknownFormat, repeated for callers that
	// only import render.
	ErrUnknownFormat = format.ErrUnknownFormat
)
