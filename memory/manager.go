package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config holds Manager construction parameters. Values are fixed for the
// life of the instance; nothing is re-read dynamically.
type Config struct {
	// ShortTermCapacity bounds the short-term tier. Default: 128.
	ShortTermCapacity int

	// LongTermCapacity bounds the long-term tier. Default: 1024.
	LongTermCapacity int

	// DefaultPriority is applied when Store is called without
	// WithPriority. Default: 5 (mid-range).
	DefaultPriority int

	// PromoteThreshold is the access count at which Consolidate moves a
	// short-term entry to long-term. Default: 3.
	PromoteThreshold int

	// ReapInterval is the TTL reaper cycle period. Default: 5s.
	// Zero disables the background reaper; lazy expiration still applies.
	ReapInterval time.Duration

	// LongTermHonorsTTL keeps an entry's TTL when it is promoted to
	// long-term. When false (the default) promotion clears the TTL.
	LongTermHonorsTTL bool
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		ShortTermCapacity: 128,
		LongTermCapacity:  1024,
		DefaultPriority:   5,
		PromoteThreshold:  3,
		ReapInterval:      5 * time.Second,
	}
}

func (c *Config) validate() error {
	if c.ShortTermCapacity <= 0 {
		return fmt.Errorf("memory: short-term capacity must be positive, got %d", c.ShortTermCapacity)
	}
	if c.LongTermCapacity <= 0 {
		return fmt.Errorf("memory: long-term capacity must be positive, got %d", c.LongTermCapacity)
	}
	if c.DefaultPriority < MinPriority || c.DefaultPriority > MaxPriority {
		return fmt.Errorf("memory: default priority %d outside [%d,%d]", c.DefaultPriority, MinPriority, MaxPriority)
	}
	if c.PromoteThreshold <= 0 {
		return fmt.Errorf("memory: promote threshold must be positive, got %d", c.PromoteThreshold)
	}
	if c.ReapInterval < 0 {
		return fmt.Errorf("memory: reap interval must not be negative, got %s", c.ReapInterval)
	}
	return nil
}

// Manager composes the tier stores, eviction, reaper and statistics into
// the public engine facade. Construct with NewManager; there is no
// package-level instance. A Manager is safe for concurrent use.
type Manager[V any] struct {
	cfg   *Config
	log   *zap.Logger
	stats *collector

	short *tierStore[V]
	long  *tierStore[V]
	ext   externalStore[V]

	nowFn func() time.Time

	mu     sync.Mutex
	reaper *reaper[V]
	closed bool
}

// NewManager builds an engine. backend may be nil, in which case the
// external tier is an unbounded in-memory store. logger may be nil. cfg
// may be nil for defaults.
func NewManager[V any](backend Backend[V], logger *zap.Logger, cfg *Config) (*Manager[V], error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager[V]{
		cfg:   cfg,
		log:   logger,
		stats: &collector{},
		nowFn: time.Now,
	}
	now := func() time.Time { return m.nowFn() }
	m.short = newTierStore[V](TierShortTerm, cfg.ShortTermCapacity, m.stats, now)
	m.long = newTierStore[V](TierLongTerm, cfg.LongTermCapacity, m.stats, now)
	if backend != nil {
		m.ext = &backendExternal[V]{backend: backend, stats: m.stats, now: now, log: logger}
	} else {
		m.ext = &memExternal[V]{store: newTierStore[V](TierExternal, 0, m.stats, now)}
	}
	return m, nil
}

// Start launches the background TTL reaper. It is a no-op when
// ReapInterval is zero or the reaper is already running.
func (m *Manager[V]) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.reaper != nil || m.cfg.ReapInterval == 0 {
		return
	}
	m.reaper = newReaper(m, m.cfg.ReapInterval)
	m.reaper.start()
	m.log.Debug("ttl reaper started", zap.Duration("interval", m.cfg.ReapInterval))
}

// Close stops the reaper and waits for any in-progress sweep to finish
// its current entry. The tier stores remain readable after Close; the
// caller owns and closes the Backend, if any.
func (m *Manager[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if m.reaper != nil {
		m.reaper.stopAndWait()
		m.reaper = nil
	}
	return nil
}

// StoreOption customizes a Store call.
type StoreOption func(*storeOptions)

type storeOptions struct {
	tier     Tier
	ttl      time.Duration
	ttlSet   bool
	priority int
	metadata map[string]any
}

// WithTier routes the entry to a tier other than the short-term default.
func WithTier(t Tier) StoreOption {
	return func(o *storeOptions) { o.tier = t }
}

// WithTTL sets an expiration relative to now. The duration must be
// positive.
func WithTTL(d time.Duration) StoreOption {
	return func(o *storeOptions) { o.ttl = d; o.ttlSet = true }
}

// WithPriority overrides the configured default priority.
func WithPriority(p int) StoreOption {
	return func(o *storeOptions) { o.priority = p }
}

// WithMetadata attaches caller metadata, matched by Search but otherwise
// uninterpreted.
func WithMetadata(md map[string]any) StoreOption {
	return func(o *storeOptions) { o.metadata = md }
}

// Store validates parameters, then inserts or overwrites the entry in the
// requested tier. A full tier evicts one victim per the eviction policy;
// ErrCapacityExceeded is returned when every resident entry is protected.
// A successful Store removes any older entry under the same key from the
// other tiers, so a key lives in exactly one tier.
func (m *Manager[V]) Store(ctx context.Context, key string, value V, opts ...StoreOption) error {
	o := storeOptions{tier: TierShortTerm, priority: m.cfg.DefaultPriority}
	for _, opt := range opts {
		opt(&o)
	}

	if key == "" {
		return &ValidationError{Field: "key", Reason: "must not be empty"}
	}
	if o.priority < MinPriority || o.priority > MaxPriority {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("%d outside [%d,%d]", o.priority, MinPriority, MaxPriority)}
	}
	if o.ttlSet && o.ttl <= 0 {
		return &ValidationError{Field: "ttl", Reason: "must be a positive duration"}
	}

	now := m.nowFn()
	e := &Entry[V]{
		Key:            key,
		Value:          value,
		Tier:           o.tier,
		Priority:       o.priority,
		Metadata:       o.metadata,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	if o.ttlSet {
		exp := now.Add(o.ttl)
		e.ExpiresAt = &exp
	}

	var err error
	switch o.tier {
	case TierShortTerm:
		err = m.short.put(e)
	case TierLongTerm:
		err = m.long.put(e)
	case TierExternal:
		err = m.ext.put(ctx, e)
	default:
		return &ValidationError{Field: "tier", Reason: fmt.Sprintf("unknown tier %q", o.tier)}
	}
	if err != nil {
		return err
	}

	// The key now lives in o.tier; drop stale copies elsewhere.
	if o.tier != TierShortTerm {
		m.short.remove(key)
	}
	if o.tier != TierLongTerm {
		m.long.remove(key)
	}
	if o.tier != TierExternal {
		if _, derr := m.ext.delete(ctx, key); derr != nil {
			m.log.Warn("drop stale external copy", zap.String("key", key), zap.Error(derr))
		}
	}
	return nil
}

// Retrieve returns the value for key, checking short-term, long-term and
// external in that order. A hit bumps the entry's access bookkeeping; a
// miss (absent or expired) mutates nothing and returns ErrNotFound.
func (m *Manager[V]) Retrieve(ctx context.Context, key string) (V, error) {
	e, err := m.RetrieveEntry(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}
	return e.Value, nil
}

// RetrieveEntry is Retrieve with full entry detail. The returned entry is
// a copy; mutating it does not affect the store.
func (m *Manager[V]) RetrieveEntry(ctx context.Context, key string) (*Entry[V], error) {
	expired := false
	for _, t := range []*tierStore[V]{m.short, m.long} {
		e, st := t.get(key, true)
		switch st {
		case lookupHit:
			m.stats.hit()
			return e, nil
		case lookupExpired:
			expired = true
		}
	}

	e, st, err := m.ext.get(ctx, key, true)
	if err != nil {
		return nil, fmt.Errorf("external tier get: %w", err)
	}
	switch st {
	case lookupHit:
		m.stats.hit()
		return e, nil
	case lookupExpired:
		expired = true
	}

	if expired {
		m.stats.missExpired()
	} else {
		m.stats.missNotFound()
	}
	return nil, ErrNotFound
}

// Delete removes key from whichever tier holds it. Returns whether a live
// entry was removed; deleting an absent key is not an error.
func (m *Manager[V]) Delete(ctx context.Context, key string) (bool, error) {
	found := m.short.remove(key)
	if m.long.remove(key) {
		found = true
	}
	extFound, err := m.ext.delete(ctx, key)
	if err != nil {
		return found, fmt.Errorf("external tier delete: %w", err)
	}
	return found || extFound, nil
}

// Keys lists the live keys of one tier, sorted.
func (m *Manager[V]) Keys(ctx context.Context, tier Tier) ([]string, error) {
	switch tier {
	case TierShortTerm:
		return m.short.keys(), nil
	case TierLongTerm:
		return m.long.keys(), nil
	case TierExternal:
		return m.ext.keys(ctx)
	}
	return nil, &ValidationError{Field: "tier", Reason: fmt.Sprintf("unknown tier %q", tier)}
}

// Stats returns a snapshot of the counters plus current per-tier
// occupancy and the derived hit rate.
func (m *Manager[V]) Stats(ctx context.Context) (Stats, error) {
	s := m.stats.snapshot()
	s.Occupancy[TierShortTerm] = m.short.size()
	s.Occupancy[TierLongTerm] = m.long.size()
	extSize, err := m.ext.size(ctx)
	if err != nil {
		return s, fmt.Errorf("external tier size: %w", err)
	}
	s.Occupancy[TierExternal] = extSize
	return s, nil
}

// ClearShortTerm drops every short-term entry and returns the count.
// Historical counters are unaffected.
func (m *Manager[V]) ClearShortTerm() int { return m.short.clear() }

// ClearLongTerm drops every long-term entry and returns the count.
func (m *Manager[V]) ClearLongTerm() int { return m.long.clear() }

// ClearExternal drops every external-tier entry and returns the count.
func (m *Manager[V]) ClearExternal(ctx context.Context) (int, error) {
	return m.ext.clear(ctx)
}

// ClearAll drops every entry in every tier and returns the total count.
func (m *Manager[V]) ClearAll(ctx context.Context) (int, error) {
	n := m.short.clear() + m.long.clear()
	extN, err := m.ext.clear(ctx)
	if err != nil {
		return n, fmt.Errorf("external tier clear: %w", err)
	}
	return n + extN, nil
}
