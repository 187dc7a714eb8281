package sqlite

import (
	"context"
	"os"
	"time"
)

// Stats holds database statistics.
type Stats struct {
	DBPath       string `json:"db_path"`
	DBSizeBytes  int64  `json:"db_size_bytes"`
	TotalEntries int    `json:"total_entries"`
	LiveEntries  int    `json:"live_entries"`
}

// Stats returns file and row statistics for the backing database.
func (s *Store[V]) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{DBPath: s.path}

	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&st.TotalEntries); err != nil {
		return st, err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE expires_at IS NULL OR expires_at > ?`, now).
		Scan(&st.LiveEntries)
	return st, err
}
