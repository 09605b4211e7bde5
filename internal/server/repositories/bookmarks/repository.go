package bookmarks

import (
	"context"

	"github.com/locallibrarian/librarian/internal/server/models"
)

// Repository describes the server-side persistence operations for bookmarks.
type Repository interface {
	// Create inserts a bookmark.
	Create(ctx context.Context, b *models.Bookmark) error

	// GetByID returns a bookmark by uuid, soft-deleted or not.
	// Returns common.ErrNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (*models.Bookmark, error)

	// Update writes url, title, folder and updated_at of the bookmark, and
	// clears any tombstone so an edit wins over a pending delete.
	Update(ctx context.Context, b *models.Bookmark) error

	// SoftDelete tombstones a bookmark, stamping updated_at with ts.
	SoftDelete(ctx context.Context, id string, ts int64) error

	// SoftDeleteForFolder tombstones the user's live bookmarks of the given
	// client folder uuid.
	SoftDeleteForFolder(ctx context.Context, userID, folderID string, ts int64) error

	// SelectUpdated lists the user's live bookmarks changed after since.
	SelectUpdated(ctx context.Context, userID string, since int64) ([]models.Bookmark, error)

	// SelectDeletedIDs lists uuids of the user's bookmarks tombstoned after
	// since.
	SelectDeletedIDs(ctx context.Context, userID string, since int64) ([]string, error)

	// PurgeDeletedBefore removes tombstones older than cutoff and reports
	// how many rows went away.
	PurgeDeletedBefore(ctx context.Context, cutoff int64) (int64, error)
}
