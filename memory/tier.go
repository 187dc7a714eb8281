package memory

import (
	"sort"
	"sync"
	"time"
)

// lookupStatus classifies the outcome of a tier lookup.
type lookupStatus int

const (
	lookupHit lookupStatus = iota
	lookupMissing
	lookupExpired
)

// tierStore holds the entries of one tier under a single mutex. Capacity
// zero means unbounded. All exported-to-engine methods are safe for
// concurrent use; no method blocks on I/O.
type tierStore[V any] struct {
	tier     Tier
	capacity int
	stats    *collector
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*Entry[V]
}

func newTierStore[V any](tier Tier, capacity int, stats *collector, now func() time.Time) *tierStore[V] {
	return &tierStore[V]{
		tier:     tier,
		capacity: capacity,
		stats:    stats,
		now:      now,
		entries:  make(map[string]*Entry[V]),
	}
}

// put inserts or overwrites by key. When the tier is full and the key is
// new, exactly one victim is evicted first; if nothing is evictable the
// put fails with ErrCapacityExceeded and the store is unchanged.
func (s *tierStore[V]) put(e *Entry[V]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[e.Key]; !exists && s.capacity > 0 && len(s.entries) >= s.capacity {
		victim := selectVictim(s.entries)
		if victim == "" {
			return ErrCapacityExceeded
		}
		delete(s.entries, victim)
		s.stats.eviction(s.tier)
	}
	e.Tier = s.tier
	s.entries[e.Key] = e
	return nil
}

// get returns a clone of the live entry for key. An expired entry is
// purged as a side effect and reported as lookupExpired. When touch is
// set, a hit bumps the access bookkeeping; scans and searches pass false.
func (s *tierStore[V]) get(key string, touch bool) (*Entry[V], lookupStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, lookupMissing
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		s.stats.expiration()
		return nil, lookupExpired
	}
	if touch {
		e.AccessCount++
		e.LastAccessedAt = s.now()
	}
	return e.clone(), lookupHit
}

// take removes and returns the live entry for key, for hand-off to
// another tier. No statistics are recorded.
func (s *tierStore[V]) take(key string) (*Entry[V], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.expired(s.now()) {
		return nil, false
	}
	delete(s.entries, key)
	return e, true
}

// restore reinserts an entry taken for a promotion that could not
// complete. It bypasses the capacity check: the slot freed by take may
// have been refilled concurrently, and losing the entry here would be
// worse than exceeding capacity until the next put rebalances.
func (s *tierStore[V]) restore(e *Entry[V]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.Tier = s.tier
	s.entries[e.Key] = e
}

// remove deletes unconditionally and reports whether the key was present
// and live.
func (s *tierStore[V]) remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	delete(s.entries, key)
	return !e.expired(s.now())
}

// snapshot returns clones of all live entries. Expired entries are
// skipped but not purged; purging belongs to get and the reaper.
func (s *tierStore[V]) snapshot() []*Entry[V] {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make([]*Entry[V], 0, len(s.entries))
	for _, e := range s.entries {
		if e.expired(now) {
			continue
		}
		out = append(out, e.clone())
	}
	return out
}

// expiredKeys lists keys whose TTL has elapsed. The reaper snapshots
// these under one short lock hold, then deletes them one at a time via
// reapOne so foreground callers are never blocked for a whole sweep.
func (s *tierStore[V]) expiredKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var keys []string
	for k, e := range s.entries {
		if e.expired(now) {
			keys = append(keys, k)
		}
	}
	return keys
}

// reapOne re-validates and purges a single expired key. Returns false if
// the key is gone or was overwritten with a live entry since the scan.
func (s *tierStore[V]) reapOne(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !e.expired(s.now()) {
		return false
	}
	delete(s.entries, key)
	s.stats.expiration()
	return true
}

// size counts live entries.
func (s *tierStore[V]) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for _, e := range s.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

// clear removes everything and returns the number of entries dropped.
func (s *tierStore[V]) clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.entries)
	s.entries = make(map[string]*Entry[V])
	return n
}

// keys returns the sorted live keys.
func (s *tierStore[V]) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	keys := make([]string, 0, len(s.entries))
	for k, e := range s.entries {
		if !e.expired(now) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
