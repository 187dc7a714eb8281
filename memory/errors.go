package memory

import (
	"errors"
	"fmt"
)

// Sentinel errors for engine operations.
var (
	// ErrNotFound reports a retrieve or delete on a key that is absent
	// from every tier (or present but TTL-expired).
	ErrNotFound = errors.New("memory: not found")

	// ErrCapacityExceeded reports a put into a full tier where every
	// resident entry holds maximum priority and is protected from
	// eviction.
	ErrCapacityExceeded = errors.New("memory: tier at capacity with no evictable entries")
)

// ValidationError reports a Store call with invalid parameters. It is
// returned before any mutation takes place.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("memory: invalid %s: %s", e.Field, e.Reason)
}
