// Package screenshots implements the local screenshot cache.
package screenshots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/locallibrarian/librarian/internal/client/models"
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

func (r *SQLiteRepository) Get(ctx context.Context, url string) (*models.ScreenshotCacheEntry, error) {
	query := `SELECT url, image_base64, created_at FROM screenshot_cache WHERE url = ?`
	e := &models.ScreenshotCacheEntry{}
	err := r.db.QueryRowContext(ctx, query, url).Scan(&e.URL, &e.ImageBase64, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("screenshot for %s: %w", url, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get screenshot: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, e *models.ScreenshotCacheEntry) error {
	query := `INSERT INTO screenshot_cache (url, image_base64, created_at) VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET image_base64 = excluded.image_base64, created_at = excluded.created_at`
	_, err := r.db.ExecContext(ctx, query, e.URL, e.ImageBase64, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to put screenshot: %w: %w", common.ErrPersistence, err)
	}
	return nil
}
