package memory

import "go.uber.org/zap"

// ConsolidationReport summarizes one Consolidate run.
type ConsolidationReport struct {
	Promoted int `json:"promoted"`
	Skipped  int `json:"skipped"`
}

// Consolidate moves every short-term entry whose access count has reached
// the configured threshold into long-term storage, preserving key, value,
// priority, metadata, creation time and access count. The entry's TTL is
// cleared unless LongTermHonorsTTL is set.
//
// When long-term is full and nothing there is evictable, that one
// promotion is skipped and the entry stays in short-term; the run
// continues. Consolidation runs synchronously in the caller and is
// idempotent: an immediate second call promotes nothing new.
func (m *Manager[V]) Consolidate() ConsolidationReport {
	var rep ConsolidationReport
	for _, cand := range m.short.snapshot() {
		if cand.AccessCount < m.cfg.PromoteThreshold {
			continue
		}

		// Re-validate under the lock; the snapshot may be stale.
		e, ok := m.short.take(cand.Key)
		if !ok {
			continue
		}
		if e.AccessCount < m.cfg.PromoteThreshold {
			m.short.restore(e)
			continue
		}

		promoted := e.clone()
		promoted.Tier = TierLongTerm
		if !m.cfg.LongTermHonorsTTL {
			promoted.ExpiresAt = nil
		}

		// Only one tier lock is held at a time: the entry has already
		// left short-term when the long-term insert runs. On failure it
		// is put back rather than lost.
		if err := m.long.put(promoted); err != nil {
			m.short.restore(e)
			m.stats.promotionSkip()
			rep.Skipped++
			m.log.Debug("promotion skipped", zap.String("key", e.Key), zap.Error(err))
			continue
		}
		m.stats.promotion()
		rep.Promoted++
	}

	if rep.Promoted > 0 || rep.Skipped > 0 {
		m.log.Debug("consolidation complete",
			zap.Int("promoted", rep.Promoted),
			zap.Int("skipped", rep.Skipped))
	}
	return rep
}
