package memory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus counters mirror the internal collector for scraping. The
// collector remains authoritative for Stats snapshots; these vectors are
// process-wide and aggregate across Manager instances.
var (
	metricHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "membank",
			Subsystem: "memory",
			Name:      "hits_total",
			Help:      "Total successful retrieves across all tiers",
		},
	)

	// Labels: reason (not_found, expired)
	metricMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "membank",
			Subsystem: "memory",
			Name:      "misses_total",
			Help:      "Total failed retrieves by reason",
		},
		[]string{"reason"},
	)

	// Labels: tier (short_term, long_term, external)
	metricEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "membank",
			Subsystem: "memory",
			Name:      "evictions_total",
			Help:      "Capacity-triggered removals by tier",
		},
		[]string{"tier"},
	)

	metricExpirations = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "membank",
			Subsystem: "memory",
			Name:      "expirations_total",
			Help:      "Entries purged after TTL elapsed (lazy or reaper)",
		},
	)

	// Labels: result (promoted, skipped)
	metricPromotions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "membank",
			Subsystem: "memory",
			Name:      "promotions_total",
			Help:      "Consolidation outcomes for short-term entries",
		},
		[]string{"result"},
	)
)
