package osm2initial

import "github.com/pkg/errors"

var (
	// ErrInvariantViolation is returned when the graph is found inconsistent between stages.
	// It signals a bug in an upstream stage, so the pipeline stops.
	ErrInvariantViolation = errors.New("graph invariant violated")
	// ErrOutOfBounds is returned when a coordinate can't be represented by the active bounds
	ErrOutOfBounds = errors.New("point is out of bounds")
	// ErrNotFound is returned when a snapshot doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrUnsupportedFormat is returned for unknown input file extensions
	ErrUnsupportedFormat = errors.New("unsupported file format")
)
