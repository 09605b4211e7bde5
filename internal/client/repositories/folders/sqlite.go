// Package folders implements local persistence for bookmark folders.
package folders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/locallibrarian/librarian/internal/client/models"
	"github.com/locallibrarian/librarian/internal/common"
	"github.com/locallibrarian/librarian/internal/dbx"
)

const folderColumns = `folder_id, server_id, user_id, name, emoji, created_at, updated_at, sync_status, is_deleted`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func scanFolder(row interface{ Scan(dest ...any) error }) (*models.Folder, error) {
	f := &models.Folder{}
	err := row.Scan(&f.FolderID, &f.ServerID, &f.UserID, &f.Name, &f.Emoji,
		&f.CreatedAt, &f.UpdatedAt, &f.SyncStatus, &f.IsDeleted)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE folder_id = ?`
	f, err := scanFolder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("folder %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}
	return f, nil
}

func (r *SQLiteRepository) GetByServerID(ctx context.Context, serverID int64) (*models.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE server_id = ?`
	f, err := scanFolder(r.db.QueryRowContext(ctx, query, serverID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("folder with server id %d: %w", serverID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get folder by server id: %w", err)
	}
	return f, nil
}

func (r *SQLiteRepository) GetForUser(ctx context.Context, userID string) ([]models.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE user_id = ? AND is_deleted = 0 ORDER BY created_at`
	return r.selectFolders(ctx, query, userID)
}

func (r *SQLiteRepository) GetDirty(ctx context.Context) ([]models.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE sync_status != ? ORDER BY created_at`
	return r.selectFolders(ctx, query, models.StatusSynced)
}

func (r *SQLiteRepository) selectFolders(ctx context.Context, query string, args ...any) ([]models.Folder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select folders: %w", err)
	}
	defer rows.Close()

	var result []models.Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Upsert inserts or fully replaces a folder by its client uuid.
func (r *SQLiteRepository) Upsert(ctx context.Context, f *models.Folder) error {
	query := `INSERT INTO folders (` + folderColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(folder_id) DO UPDATE SET
			server_id = excluded.server_id,
			user_id = excluded.user_id,
			name = excluded.name,
			emoji = excluded.emoji,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			sync_status = excluded.sync_status,
			is_deleted = excluded.is_deleted
	`
	_, err := r.db.ExecContext(ctx, query, f.FolderID, f.ServerID, f.UserID, f.Name, f.Emoji,
		f.CreatedAt, f.UpdatedAt, f.SyncStatus, f.IsDeleted)
	if err != nil {
		return fmt.Errorf("failed to upsert folder: %w: %w", common.ErrPersistence, err)
	}
	return nil
}

func (r *SQLiteRepository) BulkUpsert(ctx context.Context, fs []models.Folder) error {
	for i := range fs {
		if err := r.Upsert(ctx, &fs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) SetSyncStatus(ctx context.Context, id string, status models.SyncStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE folders SET sync_status = ? WHERE folder_id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to set folder sync status: %w: %w", common.ErrPersistence, err)
	}
	return nil
}

func (r *SQLiteRepository) MarkCreated(ctx context.Context, id string, serverID int64, updatedAt int64) error {
	query := `UPDATE folders SET server_id = ?, updated_at = ?, sync_status = ? WHERE folder_id = ?`
	_, err := r.db.ExecContext(ctx, query, serverID, updatedAt, models.StatusSynced, id)
	if err != nil {
		return fmt.Errorf("failed to mark folder created: %w: %w", common.ErrPersistence, err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSyncedByServerID(ctx context.Context, serverID int64, updatedAt int64) error {
	query := `UPDATE folders SET updated_at = ?, sync_status = ? WHERE server_id = ?`
	res, err := r.db.ExecContext(ctx, query, updatedAt, models.StatusSynced, serverID)
	if err != nil {
		return fmt.Errorf("failed to mark folder synced: %w: %w", common.ErrPersistence, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("folder with server id %d: %w", serverID, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE folder_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete folder: %w: %w", common.ErrPersistence, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user folders: %w: %w", common.ErrPersistence, err)
	}
	return nil
}
