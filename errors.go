package concurrentcube

import "errors"

// Sentinel errors for the concurrentcube package.
var (
	// ErrOperationCancelled is returned when a call is cancelled before it
	// changed or read the cube. The context error is wrapped as well.
	ErrOperationCancelled = errors.New("concurrentcube: operation cancelled")

	// Argument errors
	ErrInvalidSize  = errors.New("concurrentcube: invalid cube size")
	ErrInvalidFace  = errors.New("concurrentcube: invalid face")
	ErrInvalidLayer = errors.New("concurrentcube: invalid layer")
)
