// internal/store/sqlite.go
//
// cache.Storage backed by the cache_snapshots table (see assets/sql).

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/robalobadob/linkdle/internal/cache"
)

// SQLiteSnapshots stores cache snapshots as rows keyed by cache name.
type SQLiteSnapshots struct {
	db *sql.DB
}

// NewSQLiteSnapshots wraps an open, migrated database.
func NewSQLiteSnapshots(db *sql.DB) *SQLiteSnapshots {
	return &SQLiteSnapshots{db: db}
}

// Load returns the snapshot stored under name, or cache.ErrNoSnapshot.
func (s *SQLiteSnapshots) Load(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM cache_snapshots WHERE name=?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cache.ErrNoSnapshot
	}
	return data, err
}

// Save upserts the snapshot for name.
func (s *SQLiteSnapshots) Save(ctx context.Context, name string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_snapshots (name, data, saved_at) VALUES (?,?,?)
		 ON CONFLICT(name) DO UPDATE SET data=excluded.data, saved_at=excluded.saved_at`,
		name, data, time.Now().UTC().Format(time.RFC3339))
	return err
}
