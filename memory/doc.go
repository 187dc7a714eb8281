// Package memory implements a bounded, tiered key-value store for agent
// working memory. Entries live in one of three tiers (short-term,
// long-term, external), expire by TTL, and are evicted under capacity
// pressure by a priority-then-recency policy. Frequently accessed
// short-term entries can be promoted to long-term storage via an explicit
// Consolidate call.
//
// The engine is an in-process library: it has no wire protocol. The
// external tier is backed by an in-memory map unless a Backend (e.g. the
// SQLite backend in memory/backend/sqlite) is supplied at construction.
package memory
