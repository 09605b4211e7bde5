package folders

import (
	"context"

	"github.com/locallibrarian/librarian/internal/client/models"
)

// Repository describes the local persistence operations for folders.
// Implementations are backed by the embedded SQLite store and can be bound
// either to the database or to an open transaction (dbx.DBTX).
type Repository interface {
	// GetByID returns a folder by its client uuid, tombstoned or not.
	// Returns common.ErrNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// GetByServerID returns a folder by its remote auto-increment id.
	GetByServerID(ctx context.Context, serverID int64) (*models.Folder, error)

	// GetForUser lists the user's folders excluding tombstones, ordered by
	// creation time. Unknown users yield an empty slice.
	GetForUser(ctx context.Context, userID string) ([]models.Folder, error)

	// GetDirty returns every folder whose sync status is not synced.
	GetDirty(ctx context.Context) ([]models.Folder, error)

	// Upsert inserts or fully replaces a folder by FolderID.
	Upsert(ctx context.Context, f *models.Folder) error

	// BulkUpsert applies Upsert to each folder in order.
	BulkUpsert(ctx context.Context, fs []models.Folder) error

	// SetSyncStatus updates only the sync status of a folder.
	SetSyncStatus(ctx context.Context, id string, status models.SyncStatus) error

	// MarkCreated records a successful create-push: stores the assigned
	// server id and server timestamp and flips the folder to synced.
	MarkCreated(ctx context.Context, id string, serverID int64, updatedAt int64) error

	// MarkSyncedByServerID records a successful update-push located by the
	// remote key.
	MarkSyncedByServerID(ctx context.Context, serverID int64, updatedAt int64) error

	// Delete physically removes a folder.
	Delete(ctx context.Context, id string) error

	// DeleteForUser physically removes every folder of the user.
	DeleteForUser(ctx context.Context, userID string) error
}
