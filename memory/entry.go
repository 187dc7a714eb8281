package memory

import (
	"encoding/json"
	"fmt"
	"time"
)

// Tier identifies one of the three storage pools an entry can reside in.
type Tier string

const (
	TierShortTerm Tier = "short_term"
	TierLongTerm  Tier = "long_term"
	TierExternal  Tier = "external"
)

// Priority bounds. Entries at MaxPriority are never auto-evicted.
const (
	MinPriority = 0
	MaxPriority = 10
)

// Entry is one stored item. Tier residency is managed by the engine;
// callers never move entries between tiers directly.
type Entry[V any] struct {
	Key            string         `json:"key"`
	Value          V              `json:"value"`
	Tier           Tier           `json:"tier"`
	Priority       int            `json:"priority"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
	AccessCount    int            `json:"access_count"`
	ExpiresAt      *time.Time     `json:"expires_at,omitempty"` // nil = no expiration
}

// expired reports whether the entry's TTL has elapsed at the given instant.
func (e *Entry[V]) expired(now time.Time) bool {
	return e.ExpiresAt != nil && !e.ExpiresAt.After(now)
}

// clone returns a copy safe to hand outside the tier lock. Metadata is
// copied shallowly; the value itself is shared.
func (e *Entry[V]) clone() *Entry[V] {
	c := *e
	if e.Metadata != nil {
		c.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			c.Metadata[k] = v
		}
	}
	if e.ExpiresAt != nil {
		t := *e.ExpiresAt
		c.ExpiresAt = &t
	}
	return &c
}

// renderValue produces the textual form of a value used for substring
// search. Strings and byte slices pass through; everything else is
// rendered as JSON.
func renderValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case fmt.Stringer:
		return s.String()
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprint(v)
}
