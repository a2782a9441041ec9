package reenrich

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrStoreRequired is returned when no knowledge store is provided.
	ErrStoreRequired = errors.New("knowledge store required")

	// ErrEnricherRequired is returned when no enricher is provided.
	ErrEnricherRequired = errors.New("enricher required")
)
