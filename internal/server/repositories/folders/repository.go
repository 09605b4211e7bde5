package folders

import (
	"context"

	"github.com/locallibrarian/librarian/internal/server/models"
)

// Repository describes the server-side persistence operations for folders.
type Repository interface {
	// Create inserts a folder and returns the assigned server id.
	Create(ctx context.Context, f *models.Folder) (int64, error)

	// GetByID returns a folder by server id, soft-deleted or not.
	// Returns common.ErrNotFound when the id is unknown.
	GetByID(ctx context.Context, id int64) (*models.Folder, error)

	// GetByClientID returns a folder by its client uuid.
	GetByClientID(ctx context.Context, clientFolderID string) (*models.Folder, error)

	// Update writes name, emoji and updated_at of the folder by server id.
	Update(ctx context.Context, f *models.Folder) error

	// SoftDelete tombstones a folder, stamping updated_at with ts.
	SoftDelete(ctx context.Context, id int64, ts int64) error

	// SelectUpdated lists the user's live folders changed after since.
	SelectUpdated(ctx context.Context, userID string, since int64) ([]models.Folder, error)

	// SelectDeletedIDs lists server ids of the user's folders tombstoned
	// after since.
	SelectDeletedIDs(ctx context.Context, userID string, since int64) ([]int64, error)

	// PurgeDeletedBefore removes tombstones older than cutoff and reports
	// how many rows went away.
	PurgeDeletedBefore(ctx context.Context, cutoff int64) (int64, error)
}
