package bookmarks

import (
	"context"

	"github.com/locallibrarian/librarian/internal/client/models"
)

// Repository describes the local persistence operations for bookmarks.
type Repository interface {
	// GetByID returns a bookmark by uuid, tombstoned or not.
	// Returns common.ErrNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (*models.Bookmark, error)

	// GetForFolder lists a folder's bookmarks owned by the user, excluding
	// tombstones, ordered by creation time.
	GetForFolder(ctx context.Context, folderID, userID string) ([]models.Bookmark, error)

	// GetDirty returns every bookmark whose sync status is not synced.
	GetDirty(ctx context.Context) ([]models.Bookmark, error)

	// GetForFolderWithStatus returns the folder's bookmarks currently in the
	// given sync status, tombstoned or not.
	GetForFolderWithStatus(ctx context.Context, folderID string, status models.SyncStatus) ([]models.Bookmark, error)

	// Upsert inserts or fully replaces a bookmark by BookmarkID.
	Upsert(ctx context.Context, b *models.Bookmark) error

	// BulkUpsert applies Upsert to each bookmark in order.
	BulkUpsert(ctx context.Context, bs []models.Bookmark) error

	// SetSyncStatus updates only the sync status of a bookmark.
	SetSyncStatus(ctx context.Context, id string, status models.SyncStatus) error

	// MarkSynced records a successful push: stores the server timestamp and
	// flips the bookmark to synced.
	MarkSynced(ctx context.Context, id string, updatedAt int64) error

	// Delete physically removes a bookmark.
	Delete(ctx context.Context, id string) error

	// DeleteByIDs physically removes the given bookmarks.
	DeleteByIDs(ctx context.Context, ids []string) error

	// DeleteForFolder physically removes every bookmark of a folder.
	DeleteForFolder(ctx context.Context, folderID string) error

	// DeleteForUser physically removes every bookmark of the user.
	DeleteForUser(ctx context.Context, userID string) error
}
