package memory

import (
	"context"
	"testing"
	"time"
)

func TestConsolidatePromotesHotEntries(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, nil)

	m.Store(ctx, "h", "hot", WithMetadata(map[string]any{"source": "loop"}))
	for i := 0; i < 3; i++ {
		if _, err := m.Retrieve(ctx, "h"); err != nil {
			t.Fatalf("retrieve %d: %v", i, err)
		}
	}

	rep := m.Consolidate()
	if rep.Promoted != 1 || rep.Skipped != 0 {
		t.Fatalf("expected 1 promoted / 0 skipped, got %+v", rep)
	}

	longKeys, _ := m.Keys(ctx, TierLongTerm)
	if len(longKeys) != 1 || longKeys[0] != "h" {
		t.Fatalf("expected h in long-term, got %v", longKeys)
	}
	shortKeys, _ := m.Keys(ctx, TierShortTerm)
	if len(shortKeys) != 0 {
		t.Fatalf("expected h moved out of short-term, still holds %v", shortKeys)
	}

	// Routing checks long-term after short-term; bookkeeping carried over.
	e, err := m.RetrieveEntry(ctx, "h")
	if err != nil {
		t.Fatalf("retrieve after promotion: %v", err)
	}
	if e.Tier != TierLongTerm {
		t.Errorf("expected long-term residency, got %s", e.Tier)
	}
	if e.AccessCount != 4 {
		t.Errorf("expected access count carried over (3+1), got %d", e.AccessCount)
	}
	if e.Metadata["source"] != "loop" {
		t.Errorf("expected metadata preserved, got %v", e.Metadata)
	}
}

func TestConsolidateIdempotent(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, nil)

	m.Store(ctx, "h", "hot")
	for i := 0; i < 3; i++ {
		m.Retrieve(ctx, "h")
	}

	if rep := m.Consolidate(); rep.Promoted != 1 {
		t.Fatalf("first run: expected 1 promoted, got %+v", rep)
	}
	if rep := m.Consolidate(); rep.Promoted != 0 || rep.Skipped != 0 {
		t.Fatalf("second run: expected nothing, got %+v", rep)
	}
}

func TestConsolidateBelowThreshold(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, nil)

	m.Store(ctx, "cold", "v")
	m.Retrieve(ctx, "cold")
	m.Retrieve(ctx, "cold")

	if rep := m.Consolidate(); rep.Promoted != 0 {
		t.Fatalf("expected no promotion at access count 2, got %+v", rep)
	}
	shortKeys, _ := m.Keys(ctx, TierShortTerm)
	if len(shortKeys) != 1 {
		t.Errorf("expected entry to stay in short-term, got %v", shortKeys)
	}
}

func TestConsolidateClearsTTLByDefault(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, nil)

	m.Store(ctx, "h", "hot", WithTTL(time.Hour))
	for i := 0; i < 3; i++ {
		m.Retrieve(ctx, "h")
	}
	m.Consolidate()

	e, err := m.RetrieveEntry(ctx, "h")
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if e.ExpiresAt != nil {
		t.Errorf("expected TTL cleared on promotion, got expiry %v", e.ExpiresAt)
	}
}

func TestConsolidateHonorsTTLWhenConfigured(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.LongTermHonorsTTL = true
	m, _ := newTestManager(t, cfg)

	m.Store(ctx, "h", "hot", WithTTL(time.Hour))
	for i := 0; i < 3; i++ {
		m.Retrieve(ctx, "h")
	}
	m.Consolidate()

	e, err := m.RetrieveEntry(ctx, "h")
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if e.ExpiresAt == nil {
		t.Error("expected TTL preserved on promotion")
	}
}

func TestConsolidateSkipsWhenLongTermProtected(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.LongTermCapacity = 1
	m, _ := newTestManager(t, cfg)

	m.Store(ctx, "pinned", "v", WithTier(TierLongTerm), WithPriority(MaxPriority))

	m.Store(ctx, "h", "hot")
	for i := 0; i < 3; i++ {
		m.Retrieve(ctx, "h")
	}

	rep := m.Consolidate()
	if rep.Promoted != 0 || rep.Skipped != 1 {
		t.Fatalf("expected 0 promoted / 1 skipped, got %+v", rep)
	}

	// Partial failure: the hot entry stays in short-term.
	shortKeys, _ := m.Keys(ctx, TierShortTerm)
	if len(shortKeys) != 1 || shortKeys[0] != "h" {
		t.Errorf("expected h back in short-term, got %v", shortKeys)
	}

	s, _ := m.Stats(ctx)
	if s.PromotionSkips != 1 {
		t.Errorf("expected 1 promotion skip, got %d", s.PromotionSkips)
	}
	if s.Promotions != 0 {
		t.Errorf("expected 0 promotions, got %d", s.Promotions)
	}
}

func TestConsolidateEvictsFromLongTermWhenAllowed(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.LongTermCapacity = 1
	m, _ := newTestManager(t, cfg)

	m.Store(ctx, "evictable", "v", WithTier(TierLongTerm), WithPriority(2))

	m.Store(ctx, "h", "hot")
	for i := 0; i < 3; i++ {
		m.Retrieve(ctx, "h")
	}

	rep := m.Consolidate()
	if rep.Promoted != 1 {
		t.Fatalf("expected promotion via long-term eviction, got %+v", rep)
	}

	s, _ := m.Stats(ctx)
	if s.Evictions[TierLongTerm] != 1 {
		t.Errorf("expected 1 long-term eviction, got %d", s.Evictions[TierLongTerm])
	}
	longKeys, _ := m.Keys(ctx, TierLongTerm)
	if len(longKeys) != 1 || longKeys[0] != "h" {
		t.Errorf("expected only h in long-term, got %v", longKeys)
	}
}
