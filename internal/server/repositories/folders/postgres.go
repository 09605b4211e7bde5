// Package folders implements server-side folder persistence.
package folders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/locallibrarian/librarian/internal/common"
	"github.com/locallibrarian/librarian/internal/dbx"
	"github.com/locallibrarian/librarian/internal/server/models"
)

const folderColumns = "id, client_folder_id, user_id, name, emoji, created_at, updated_at, is_deleted"

// PostgresRepository implements Repository over a DBTX (either *sql.DB or
// *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository returns a new PostgresRepository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanFolder(row interface{ Scan(dest ...any) error }) (*models.Folder, error) {
	f := &models.Folder{}
	err := row.Scan(&f.ID, &f.ClientFolderID, &f.UserID, &f.Name, &f.Emoji, &f.CreatedAt, &f.UpdatedAt, &f.IsDeleted)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *PostgresRepository) Create(ctx context.Context, f *models.Folder) (int64, error) {
	query := `INSERT INTO folders (client_folder_id, user_id, name, emoji, created_at, updated_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE) RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, query, f.ClientFolderID, f.UserID, f.Name, f.Emoji, f.CreatedAt, f.UpdatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create folder: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	query := fmt.Sprintf("SELECT %s FROM folders WHERE id = $1", folderColumns)
	f, err := scanFolder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("folder %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) GetByClientID(ctx context.Context, clientFolderID string) (*models.Folder, error) {
	query := fmt.Sprintf("SELECT %s FROM folders WHERE client_folder_id = $1", folderColumns)
	f, err := scanFolder(r.db.QueryRowContext(ctx, query, clientFolderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("folder %s: %w", clientFolderID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) Update(ctx context.Context, f *models.Folder) error {
	query := `UPDATE folders SET name = $1, emoji = $2, updated_at = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, f.Name, f.Emoji, f.UpdatedAt, f.ID)
	if err != nil {
		return fmt.Errorf("failed to update folder: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("folder %d: %w", f.ID, common.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id int64, ts int64) error {
	query := `UPDATE folders SET is_deleted = TRUE, updated_at = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, ts, id)
	if err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("folder %d: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) SelectUpdated(ctx context.Context, userID string, since int64) ([]models.Folder, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM folders WHERE user_id = $1 AND updated_at > $2 AND is_deleted = FALSE ORDER BY updated_at",
		folderColumns)
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to select folders: %w", err)
	}
	defer rows.Close()

	var fs []models.Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		fs = append(fs, *f)
	}
	return fs, rows.Err()
}

func (r *PostgresRepository) SelectDeletedIDs(ctx context.Context, userID string, since int64) ([]int64, error) {
	query := `SELECT id FROM folders WHERE user_id = $1 AND updated_at > $2 AND is_deleted = TRUE ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to select deleted folders: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostgresRepository) PurgeDeletedBefore(ctx context.Context, cutoff int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE is_deleted = TRUE AND updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge folders: %w", err)
	}
	return res.RowsAffected()
}
