// Package sqlite implements the engine's external-tier Backend on a
// single-file SQLite database. One row per key; values and metadata are
// stored as JSON.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/membank/membank/memory"
)

// Store is a persistent Backend. Safe for concurrent use; SQLite runs in
// WAL mode so readers do not block the writer.
type Store[V any] struct {
	db   *sql.DB
	path string
}

var _ memory.Backend[string] = (*Store[string])(nil)

// New opens or creates the database at path and migrates the schema.
func New[V any](path string) (*Store[V], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store[V]{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store[V]) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id               TEXT PRIMARY KEY,
		key              TEXT NOT NULL UNIQUE,
		value            TEXT NOT NULL,
		priority         INTEGER NOT NULL DEFAULT 5,
		metadata         TEXT,
		created_at       TEXT NOT NULL,
		last_accessed_at TEXT NOT NULL,
		access_count     INTEGER NOT NULL DEFAULT 0,
		expires_at       TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_entries_expires ON entries(expires_at);
	CREATE INDEX IF NOT EXISTS idx_entries_priority ON entries(priority);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store[V]) newID() string {
	return ulid.Make().String()
}

// Put creates or overwrites the row for e.Key.
func (s *Store[V]) Put(ctx context.Context, e *memory.Entry[V]) error {
	valueJSON, err := json.Marshal(e.Value)
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}

	var metaPtr *string
	if len(e.Metadata) > 0 {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		m := string(b)
		metaPtr = &m
	}

	var expiresAt *string
	if e.ExpiresAt != nil {
		v := e.ExpiresAt.UTC().Format(time.RFC3339Nano)
		expiresAt = &v
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO entries (id, key, value, priority, metadata, created_at, last_accessed_at, access_count, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   value            = excluded.value,
		   priority         = excluded.priority,
		   metadata         = excluded.metadata,
		   created_at       = excluded.created_at,
		   last_accessed_at = excluded.last_accessed_at,
		   access_count     = excluded.access_count,
		   expires_at       = excluded.expires_at`,
		s.newID(), e.Key, string(valueJSON), e.Priority, metaPtr,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
		e.LastAccessedAt.UTC().Format(time.RFC3339Nano),
		e.AccessCount, expiresAt)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// Get returns the stored entry, expired or not. Absent keys report
// memory.ErrNotFound.
func (s *Store[V]) Get(ctx context.Context, key string) (*memory.Entry[V], error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT key, value, priority, metadata, created_at, last_accessed_at, access_count, expires_at
		 FROM entries WHERE key = ?`, key)
	e, err := scanEntry[V](row)
	if err == sql.ErrNoRows {
		return nil, memory.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Touch bumps access bookkeeping after a successful retrieve.
func (s *Store[V]) Touch(ctx context.Context, key string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE entries SET access_count = access_count + 1, last_accessed_at = ? WHERE key = ?`,
		at.UTC().Format(time.RFC3339Nano), key)
	return err
}

// Delete removes the row; missing keys are ignored.
func (s *Store[V]) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, key)
	return err
}

// Scan returns every stored entry, ordered by key.
func (s *Store[V]) Scan(ctx context.Context) ([]*memory.Entry[V], error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value, priority, metadata, created_at, last_accessed_at, access_count, expires_at
		 FROM entries ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*memory.Entry[V]
	for rows.Next() {
		e, err := scanEntry[V](rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Keys returns every stored key, sorted.
func (s *Store[V]) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM entries ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Clear removes every row and returns the count.
func (s *Store[V]) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Size returns the number of stored rows.
func (s *Store[V]) Size(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n)
	return n, err
}

// Close closes the underlying database.
func (s *Store[V]) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry[V any](row scanner) (*memory.Entry[V], error) {
	var (
		e              memory.Entry[V]
		valueJSON      string
		metaJSON       sql.NullString
		createdAt      string
		lastAccessedAt string
		expiresAt      sql.NullString
	)
	err := row.Scan(&e.Key, &valueJSON, &e.Priority, &metaJSON,
		&createdAt, &lastAccessedAt, &e.AccessCount, &expiresAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(valueJSON), &e.Value); err != nil {
		return nil, fmt.Errorf("decode value for %q: %w", e.Key, err)
	}
	if metaJSON.Valid {
		if err := json.Unmarshal([]byte(metaJSON.String), &e.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %q: %w", e.Key, err)
		}
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("decode created_at for %q: %w", e.Key, err)
	}
	if e.LastAccessedAt, err = time.Parse(time.RFC3339Nano, lastAccessedAt); err != nil {
		return nil, fmt.Errorf("decode last_accessed_at for %q: %w", e.Key, err)
	}
	if expiresAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, expiresAt.String)
		if err != nil {
			return nil, fmt.Errorf("decode expires_at for %q: %w", e.Key, err)
		}
		e.ExpiresAt = &t
	}
	e.Tier = memory.TierExternal
	return &e, nil
}
