// Package bookmarks implements local persistence for bookmarks.
package bookmarks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/locallibrarian/librarian/internal/client/models"
	"github.com/locallibrarian/librarian/internal/common"
	"github.com/locallibrarian/librarian/internal/dbx"
)

const bookmarkColumns = `bookmark_id, user_id, folder_id, url, title, created_at, updated_at, sync_status, is_deleted`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func scanBookmark(row interface{ Scan(dest ...any) error }) (*models.Bookmark, error) {
	b := &models.Bookmark{}
	err := row.Scan(&b.BookmarkID, &b.UserID, &b.FolderID, &b.URL, &b.Title,
		&b.CreatedAt, &b.UpdatedAt, &b.SyncStatus, &b.IsDeleted)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Bookmark, error) {
	query := `SELECT ` + bookmarkColumns + ` FROM bookmarks WHERE bookmark_id = ?`
	b, err := scanBookmark(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bookmark %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) GetForFolder(ctx context.Context, folderID, userID string) ([]models.Bookmark, error) {
	query := `SELECT ` + bookmarkColumns + ` FROM bookmarks
		WHERE folder_id = ? AND user_id = ? AND is_deleted = 0 ORDER BY created_at`
	return r.selectBookmarks(ctx, query, folderID, userID)
}

func (r *SQLiteRepository) GetDirty(ctx context.Context) ([]models.Bookmark, error) {
	query := `SELECT ` + bookmarkColumns + ` FROM bookmarks WHERE sync_status != ? ORDER BY created_at`
	return r.selectBookmarks(ctx, query, models.StatusSynced)
}

func (r *SQLiteRepository) GetForFolderWithStatus(ctx context.Context, folderID string, status models.SyncStatus) ([]models.Bookmark, error) {
	query := `SELECT ` + bookmarkColumns + ` FROM bookmarks WHERE folder_id = ? AND sync_status = ?`
	return r.selectBookmarks(ctx, query, folderID, status)
}

func (r *SQLiteRepository) selectBookmarks(ctx context.Context, query string, args ...any) ([]models.Bookmark, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select bookmarks: %w", err)
	}
	defer rows.Close()

	var result []models.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, b *models.Bookmark) error {
	query := `INSERT INTO bookmarks (` + bookmarkColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(bookmark_id) DO UPDATE SET
			user_id = excluded.user_id,
			folder_id = excluded.folder_id,
			url = excluded.url,
			title = excluded.title,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			sync_status = excluded.sync_status,
			is_deleted = excluded.is_deleted
	`
	_, err := r.db.ExecContext(ctx, query, b.BookmarkID, b.UserID, b.FolderID, b.URL, b.Title,
		b.CreatedAt, b.UpdatedAt, b.SyncStatus, b.IsDeleted)
	if err != nil {
		return fmt.Errorf("failed to upsert bookmark: %w: %w", common.ErrPersistence, err)
	}
	return nil
}

func (r *SQLiteRepository) BulkUpsert(ctx context.Context, bs []models.Bookmark) error {
	for i := range bs {
		if err := r.Upsert(ctx, &bs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) SetSyncStatus(ctx context.Context, id string, status models.SyncStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE bookmarks SET sync_status = ? WHERE bookmark_id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to set bookmark sync status: %w: %w", common.ErrPersistence, err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, updatedAt int64) error {
	query := `UPDATE bookmarks SET updated_at = ?, sync_status = ? WHERE bookmark_id = ?`
	_, err := r.db.ExecContext(ctx, query, updatedAt, models.StatusSynced, id)
	if err != nil {
		return fmt.Errorf("failed to mark bookmark synced: %w: %w", common.ErrPersistence, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE bookmark_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w: %w", common.ErrPersistence, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE bookmark_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to delete bookmarks: %w: %w", common.ErrPersistence, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteForFolder(ctx context.Context, folderID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE folder_id = ?`, folderID)
	if err != nil {
		return fmt.Errorf("failed to delete folder bookmarks: %w: %w", common.ErrPersistence, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user bookmarks: %w: %w", common.ErrPersistence, err)
	}
	return nil
}
