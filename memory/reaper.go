package memory

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// reaper periodically purges expired entries from every tier. It
// complements lazy expiration: get guarantees read-time correctness, the
// reaper bounds staleness for keys that are never read again.
type reaper[V any] struct {
	m        *Manager[V]
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func newReaper[V any](m *Manager[V], interval time.Duration) *reaper[V] {
	return &reaper[V]{
		m:        m,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (r *reaper[V]) start() {
	go r.run()
}

// stopAndWait signals shutdown and blocks until the current sweep has
// finished its in-flight entry delete.
func (r *reaper[V]) stopAndWait() {
	close(r.stop)
	<-r.done
}

func (r *reaper[V]) run() {
	defer close(r.done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-r.stop
		cancel()
	}()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// sweep snapshots expired keys per tier under a short lock hold, then
// re-validates and deletes them one at a time so foreground callers are
// never blocked for a whole cycle.
func (r *reaper[V]) sweep(ctx context.Context) {
	reaped := 0
	for _, t := range []*tierStore[V]{r.m.short, r.m.long} {
		for _, key := range t.expiredKeys() {
			select {
			case <-r.stop:
				return
			default:
			}
			if t.reapOne(key) {
				reaped++
			}
		}
	}
	reaped += r.m.ext.reapExpired(ctx)

	if reaped > 0 {
		r.m.log.Debug("reaper cycle", zap.Int("reaped", reaped))
	}
}
