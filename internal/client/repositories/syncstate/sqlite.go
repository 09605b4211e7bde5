// Package syncstate persists sync watermarks and session state in a
// key/value table of the local store.
package syncstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/locallibrarian/librarian/internal/common"
	"github.com/locallibrarian/librarian/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM sync_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get sync_state[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set sync_state[%s]: %w: %w", key, common.ErrPersistence, err)
	}
	return nil
}

// GetTimestamp reads an epoch-millisecond watermark. An absent or empty key
// reads as zero, which makes the first pull request everything.
func (r *SQLiteRepository) GetTimestamp(ctx context.Context, key string) (int64, error) {
	value, err := r.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if value == "" {
		return 0, nil
	}
	ts, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt sync_state[%s]=%q: %w", key, value, err)
	}
	return ts, nil
}

func (r *SQLiteRepository) SetTimestamp(ctx context.Context, key string, ts int64) error {
	return r.Set(ctx, key, strconv.FormatInt(ts, 10))
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sync_state WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete sync_state[%s]: %w: %w", key, common.ErrPersistence, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sync_state`)
	if err != nil {
		return fmt.Errorf("failed to clear sync_state: %w: %w", common.ErrPersistence, err)
	}
	return nil
}
