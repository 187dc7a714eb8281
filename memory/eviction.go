package memory

// selectVictim picks the entry to evict from a full tier: lowest priority
// first, then least-recently-accessed, then lowest access count, then
// smallest key. The final key comparison makes the order total, so the
// same state always evicts the same entry. Entries at MaxPriority are
// protected; if every entry is protected the result is "".
//
// Called with the tier lock held.
func selectVictim[V any](entries map[string]*Entry[V]) string {
	var victim *Entry[V]
	for _, e := range entries {
		if e.Priority >= MaxPriority {
			continue
		}
		if victim == nil || evictBefore(e, victim) {
			victim = e
		}
	}
	if victim == nil {
		return ""
	}
	return victim.Key
}

// evictBefore reports whether a should be evicted in preference to b.
func evictBefore[V any](a, b *Entry[V]) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if !a.LastAccessedAt.Equal(b.LastAccessedAt) {
		return a.LastAccessedAt.Before(b.LastAccessedAt)
	}
	if a.AccessCount != b.AccessCount {
		return a.AccessCount < b.AccessCount
	}
	return a.Key < b.Key
}
