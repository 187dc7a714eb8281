package memory

import (
	"context"
	"time"
)

// Backend is the pluggable storage capability behind the external tier.
// Implementations perform I/O on each call; the engine adds no caching in
// front of them. Get returns ErrNotFound for absent keys. The engine
// calls synchronously and surfaces backend errors to its caller.
type Backend[V any] interface {
	// Put creates or overwrites the entry for its key.
	Put(ctx context.Context, e *Entry[V]) error

	// Get returns the stored entry, expired or not; the engine applies
	// TTL semantics on top.
	Get(ctx context.Context, key string) (*Entry[V], error)

	// Touch records a successful retrieve: access count +1, last access
	// set to at.
	Touch(ctx context.Context, key string, at time.Time) error

	// Delete removes the entry. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Scan returns all stored entries, including expired ones.
	Scan(ctx context.Context) ([]*Entry[V], error)

	// Keys returns all stored keys, sorted.
	Keys(ctx context.Context) ([]string, error)

	// Clear removes every entry and returns how many were dropped.
	Clear(ctx context.Context) (int, error)

	// Size returns the number of stored entries.
	Size(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}
