package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Search returns every live entry, across all tiers, whose textual value
// or metadata values contain the query, case-insensitively. Results are
// ordered most-recently-accessed first. Searching is read-only with
// respect to access bookkeeping: only Retrieve moves the LRU and
// consolidation signals.
func (m *Manager[V]) Search(ctx context.Context, query string) ([]*Entry[V], error) {
	q := strings.ToLower(query)

	candidates := m.short.snapshot()
	candidates = append(candidates, m.long.snapshot()...)
	ext, err := m.ext.scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("external tier scan: %w", err)
	}
	candidates = append(candidates, ext...)

	var results []*Entry[V]
	for _, e := range candidates {
		if matches(e, q) {
			results = append(results, e)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if !a.LastAccessedAt.Equal(b.LastAccessedAt) {
			return a.LastAccessedAt.After(b.LastAccessedAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.Key < b.Key
	})
	return results, nil
}

func matches[V any](e *Entry[V], lowerQuery string) bool {
	if strings.Contains(strings.ToLower(renderValue(e.Value)), lowerQuery) {
		return true
	}
	for _, v := range e.Metadata {
		if strings.Contains(strings.ToLower(fmt.Sprint(v)), lowerQuery) {
			return true
		}
	}
	return false
}
