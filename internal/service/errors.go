package service

import "errors"

var (
	// ErrPersistence marks a durable write that failed after the in-memory update
	// was applied. Callers should treat it as a warning.
	ErrPersistence        = errors.New("persistence failure")
	ErrActorIDMissing     = errors.New("actor_id is required")
	ErrInvalidPerformance = errors.New("performance must be a finite number")
)

// IsWarning reports whether err only carries persistence warnings.
func IsWarning(err error) bool {
	return errors.Is(err, ErrPersistence)
}
