package memory

import "sync/atomic"

// Stats is a point-in-time snapshot of engine counters. All counters are
// monotonic for the life of a Manager; Clear* operations shrink occupancy
// but never reset historical counters.
type Stats struct {
	Hits           uint64          `json:"hits"`
	Misses         uint64          `json:"misses"`
	MissesNotFound uint64          `json:"misses_not_found"`
	MissesExpired  uint64          `json:"misses_expired"`
	Evictions      map[Tier]uint64 `json:"evictions"`
	Expirations    uint64          `json:"expirations"`
	Promotions     uint64          `json:"promotions"`
	PromotionSkips uint64          `json:"promotion_skips"`
	Occupancy      map[Tier]int    `json:"occupancy"`
	HitRate        float64         `json:"hit_rate"`
}

// collector aggregates counters with atomic increments. The tier lock
// held for the triggering operation is the only synchronization; the
// collector itself never locks.
type collector struct {
	hits           atomic.Uint64
	missesNotFound atomic.Uint64
	missesExpired  atomic.Uint64
	expirations    atomic.Uint64
	promotions     atomic.Uint64
	promotionSkips atomic.Uint64

	evictShort    atomic.Uint64
	evictLong     atomic.Uint64
	evictExternal atomic.Uint64
}

func (c *collector) hit() {
	c.hits.Add(1)
	metricHits.Inc()
}

func (c *collector) missNotFound() {
	c.missesNotFound.Add(1)
	metricMisses.WithLabelValues("not_found").Inc()
}

func (c *collector) missExpired() {
	c.missesExpired.Add(1)
	metricMisses.WithLabelValues("expired").Inc()
}

func (c *collector) expiration() {
	c.expirations.Add(1)
	metricExpirations.Inc()
}

func (c *collector) promotion() {
	c.promotions.Add(1)
	metricPromotions.WithLabelValues("promoted").Inc()
}

func (c *collector) promotionSkip() {
	c.promotionSkips.Add(1)
	metricPromotions.WithLabelValues("skipped").Inc()
}

func (c *collector) eviction(tier Tier) {
	switch tier {
	case TierShortTerm:
		c.evictShort.Add(1)
	case TierLongTerm:
		c.evictLong.Add(1)
	case TierExternal:
		c.evictExternal.Add(1)
	}
	metricEvictions.WithLabelValues(string(tier)).Inc()
}

// snapshot materializes the counters. Occupancy is filled in by the
// Manager, which owns the tier stores.
func (c *collector) snapshot() Stats {
	s := Stats{
		Hits:           c.hits.Load(),
		MissesNotFound: c.missesNotFound.Load(),
		MissesExpired:  c.missesExpired.Load(),
		Expirations:    c.expirations.Load(),
		Promotions:     c.promotions.Load(),
		PromotionSkips: c.promotionSkips.Load(),
		Evictions: map[Tier]uint64{
			TierShortTerm: c.evictShort.Load(),
			TierLongTerm:  c.evictLong.Load(),
			TierExternal:  c.evictExternal.Load(),
		},
		Occupancy: map[Tier]int{},
	}
	s.Misses = s.MissesNotFound + s.MissesExpired
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}
