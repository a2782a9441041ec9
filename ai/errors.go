package ai

import "errors"

// Failure kinds shared by every capability implementation.
var (
	// ErrServiceUnavailable indicates the backing service could not be reached or refused the call.
	ErrServiceUnavailable = errors.New("ai service unavailable")

	// ErrInvalidResponse indicates the service answered with something unusable.
	ErrInvalidResponse = errors.New("invalid ai response")

	// ErrTimeout indicates the call did not finish in time.
	ErrTimeout = errors.New("ai call timed out")
)
