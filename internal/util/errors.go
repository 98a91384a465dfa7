package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrNotFound indicates a required resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a caller supplied an incomplete record
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMigration indicates the store could not be brought to the current schema
	ErrMigration = errors.New("schema migration failed")

	// ErrConsistency indicates the orphan cleanup after a track mutation failed
	ErrConsistency = errors.New("consistency cleanup failed")

	// ErrShadowedTrack indicates the album disc is already supplied by another folder
	ErrShadowedTrack = errors.New("album disc supplied by another folder")

	// ErrUnsupported indicates a file format or operation is not supported
	ErrUnsupported = errors.New("unsupported")
)
