// Package bookmarks implements server-side bookmark persistence.
package bookmarks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/locallibrarian/librarian/internal/common"
	"github.com/locallibrarian/librarian/internal/dbx"
	"github.com/locallibrarian/librarian/internal/server/models"
)

const bookmarkColumns = "id, user_id, folder_id, url, title, created_at, updated_at, is_deleted"

// PostgresRepository implements Repository over a DBTX (either *sql.DB or
// *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository returns a new PostgresRepository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanBookmark(row interface{ Scan(dest ...any) error }) (*models.Bookmark, error) {
	b := &models.Bookmark{}
	err := row.Scan(&b.ID, &b.UserID, &b.FolderID, &b.URL, &b.Title, &b.CreatedAt, &b.UpdatedAt, &b.IsDeleted)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *PostgresRepository) Create(ctx context.Context, b *models.Bookmark) error {
	query := `INSERT INTO bookmarks (id, user_id, folder_id, url, title, created_at, updated_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)`
	_, err := r.db.ExecContext(ctx, query, b.ID, b.UserID, b.FolderID, b.URL, b.Title, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bookmark: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Bookmark, error) {
	query := fmt.Sprintf("SELECT %s FROM bookmarks WHERE id = $1", bookmarkColumns)
	b, err := scanBookmark(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bookmark %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) Update(ctx context.Context, b *models.Bookmark) error {
	query := `UPDATE bookmarks SET folder_id = $1, url = $2, title = $3, updated_at = $4, is_deleted = FALSE WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query, b.FolderID, b.URL, b.Title, b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("failed to update bookmark: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bookmark %s: %w", b.ID, common.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id string, ts int64) error {
	query := `UPDATE bookmarks SET is_deleted = TRUE, updated_at = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, ts, id)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bookmark %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) SoftDeleteForFolder(ctx context.Context, userID, folderID string, ts int64) error {
	query := `UPDATE bookmarks SET is_deleted = TRUE, updated_at = $1
		WHERE user_id = $2 AND folder_id = $3 AND is_deleted = FALSE`
	_, err := r.db.ExecContext(ctx, query, ts, userID, folderID)
	if err != nil {
		return fmt.Errorf("failed to delete folder bookmarks: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SelectUpdated(ctx context.Context, userID string, since int64) ([]models.Bookmark, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM bookmarks WHERE user_id = $1 AND updated_at > $2 AND is_deleted = FALSE ORDER BY updated_at",
		bookmarkColumns)
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to select bookmarks: %w", err)
	}
	defer rows.Close()

	var bs []models.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		bs = append(bs, *b)
	}
	return bs, rows.Err()
}

func (r *PostgresRepository) SelectDeletedIDs(ctx context.Context, userID string, since int64) ([]string, error) {
	query := `SELECT id FROM bookmarks WHERE user_id = $1 AND updated_at > $2 AND is_deleted = TRUE ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to select deleted bookmarks: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostgresRepository) PurgeDeletedBefore(ctx context.Context, cutoff int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE is_deleted = TRUE AND updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge bookmarks: %w", err)
	}
	return res.RowsAffected()
}
