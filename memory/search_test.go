package memory

import (
	"context"
	"testing"
	"time"
)

func TestSearchSubstring(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, nil)

	m.Store(ctx, "x", "The quick brown fox")

	results, err := m.Search(ctx, "brown")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Key != "x" {
		t.Fatalf("expected [x], got %v", results)
	}

	empty, err := m.Search(ctx, "zzz")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no results, got %d", len(empty))
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, nil)

	m.Store(ctx, "x", "The Quick Brown Fox")

	results, _ := m.Search(ctx, "qUiCk bRoWn")
	if len(results) != 1 {
		t.Fatalf("expected case-insensitive match, got %d results", len(results))
	}
}

func TestSearchMetadataValues(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, nil)

	m.Store(ctx, "x", "payload", WithMetadata(map[string]any{"project": "Orion", "attempt": 42}))

	if results, _ := m.Search(ctx, "orion"); len(results) != 1 {
		t.Error("expected match on metadata string value")
	}
	if results, _ := m.Search(ctx, "42"); len(results) != 1 {
		t.Error("expected match on metadata numeric value")
	}
}

func TestSearchAcrossTiers(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, nil)

	m.Store(ctx, "a", "needle in short")
	m.Store(ctx, "b", "needle in long", WithTier(TierLongTerm))
	m.Store(ctx, "c", "needle in external", WithTier(TierExternal))
	m.Store(ctx, "d", "hay")

	results, err := m.Search(ctx, "needle")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 matches across tiers, got %d", len(results))
	}
}

func TestSearchSkipsExpired(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(t, nil)

	m.Store(ctx, "gone", "needle", WithTTL(time.Second))
	m.Store(ctx, "kept", "needle")
	clock.advance(2 * time.Second)

	results, _ := m.Search(ctx, "needle")
	if len(results) != 1 || results[0].Key != "kept" {
		t.Fatalf("expected only the live entry, got %v", results)
	}
}

func TestSearchOrdersByRecentAccess(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(t, nil)

	m.Store(ctx, "old", "needle one")
	clock.advance(time.Minute)
	m.Store(ctx, "new", "needle two")
	clock.advance(time.Minute)
	m.Retrieve(ctx, "old")

	results, _ := m.Search(ctx, "needle")
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Key != "old" || results[1].Key != "new" {
		t.Errorf("expected most-recently-accessed first, got [%s %s]", results[0].Key, results[1].Key)
	}
}

func TestSearchDoesNotTouchBookkeeping(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, nil)

	m.Store(ctx, "x", "needle")
	for i := 0; i < 5; i++ {
		m.Search(ctx, "needle")
	}

	e, err := m.RetrieveEntry(ctx, "x")
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	// Only the explicit retrieve counts.
	if e.AccessCount != 1 {
		t.Errorf("expected access count 1 after searches, got %d", e.AccessCount)
	}

	s, _ := m.Stats(ctx)
	if s.Hits != 1 || s.Misses != 0 {
		t.Errorf("search must not move hit/miss counters: %+v", s)
	}
}
