package memory

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// externalStore is the engine-internal face of the external tier. The
// in-memory form wraps an unbounded tierStore; the delegating form wraps
// a caller-supplied Backend.
type externalStore[V any] interface {
	put(ctx context.Context, e *Entry[V]) error
	get(ctx context.Context, key string, touch bool) (*Entry[V], lookupStatus, error)
	delete(ctx context.Context, key string) (bool, error)
	scan(ctx context.Context) ([]*Entry[V], error)
	reapExpired(ctx context.Context) int
	size(ctx context.Context) (int, error)
	clear(ctx context.Context) (int, error)
	keys(ctx context.Context) ([]string, error)
}

// memExternal is the default external tier: an unbounded in-memory store.
type memExternal[V any] struct {
	store *tierStore[V]
}

func (m *memExternal[V]) put(_ context.Context, e *Entry[V]) error {
	return m.store.put(e)
}

func (m *memExternal[V]) get(_ context.Context, key string, touch bool) (*Entry[V], lookupStatus, error) {
	e, st := m.store.get(key, touch)
	return e, st, nil
}

func (m *memExternal[V]) delete(_ context.Context, key string) (bool, error) {
	return m.store.remove(key), nil
}

func (m *memExternal[V]) scan(_ context.Context) ([]*Entry[V], error) {
	return m.store.snapshot(), nil
}

func (m *memExternal[V]) reapExpired(ctx context.Context) int {
	n := 0
	for _, key := range m.store.expiredKeys() {
		if ctx.Err() != nil {
			return n
		}
		if m.store.reapOne(key) {
			n++
		}
	}
	return n
}

func (m *memExternal[V]) size(_ context.Context) (int, error) {
	return m.store.size(), nil
}

func (m *memExternal[V]) clear(_ context.Context) (int, error) {
	return m.store.clear(), nil
}

func (m *memExternal[V]) keys(_ context.Context) ([]string, error) {
	return m.store.keys(), nil
}

// backendExternal delegates the external tier to a Backend, applying the
// same TTL and access-bookkeeping semantics as the in-memory tiers.
type backendExternal[V any] struct {
	backend Backend[V]
	stats   *collector
	now     func() time.Time
	log     *zap.Logger
}

func (b *backendExternal[V]) put(ctx context.Context, e *Entry[V]) error {
	e.Tier = TierExternal
	return b.backend.Put(ctx, e)
}

func (b *backendExternal[V]) get(ctx context.Context, key string, touch bool) (*Entry[V], lookupStatus, error) {
	e, err := b.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, lookupMissing, nil
	}
	if err != nil {
		return nil, lookupMissing, err
	}

	now := b.now()
	if e.expired(now) {
		if derr := b.backend.Delete(ctx, key); derr != nil {
			b.log.Warn("purge expired external entry", zap.String("key", key), zap.Error(derr))
		}
		b.stats.expiration()
		return nil, lookupExpired, nil
	}
	if touch {
		if terr := b.backend.Touch(ctx, key, now); terr != nil {
			return nil, lookupMissing, terr
		}
		e.AccessCount++
		e.LastAccessedAt = now
	}
	e.Tier = TierExternal
	return e, lookupHit, nil
}

func (b *backendExternal[V]) delete(ctx context.Context, key string) (bool, error) {
	e, err := b.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	live := !e.expired(b.now())
	return live, b.backend.Delete(ctx, key)
}

func (b *backendExternal[V]) scan(ctx context.Context) ([]*Entry[V], error) {
	all, err := b.backend.Scan(ctx)
	if err != nil {
		return nil, err
	}
	now := b.now()
	live := all[:0]
	for _, e := range all {
		if !e.expired(now) {
			e.Tier = TierExternal
			live = append(live, e)
		}
	}
	return live, nil
}

// reapExpired deletes expired backend entries one by one. Failures are
// isolated per entry so a single bad row cannot halt the sweep.
func (b *backendExternal[V]) reapExpired(ctx context.Context) int {
	all, err := b.backend.Scan(ctx)
	if err != nil {
		b.log.Warn("scan external tier", zap.Error(err))
		return 0
	}
	now := b.now()
	n := 0
	for _, e := range all {
		if ctx.Err() != nil {
			return n
		}
		if !e.expired(now) {
			continue
		}
		if err := b.backend.Delete(ctx, e.Key); err != nil {
			b.log.Warn("reap external entry", zap.String("key", e.Key), zap.Error(err))
			continue
		}
		b.stats.expiration()
		n++
	}
	return n
}

func (b *backendExternal[V]) size(ctx context.Context) (int, error) {
	live, err := b.scan(ctx)
	if err != nil {
		return 0, err
	}
	return len(live), nil
}

func (b *backendExternal[V]) clear(ctx context.Context) (int, error) {
	return b.backend.Clear(ctx)
}

// keys lists live keys only; the backend stores expired rows until a read
// or sweep purges them.
func (b *backendExternal[V]) keys(ctx context.Context) ([]string, error) {
	live, err := b.scan(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(live))
	for _, e := range live {
		keys = append(keys, e.Key)
	}
	return keys, nil
}
