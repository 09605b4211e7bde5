package screenshots

import (
	"context"

	"github.com/locallibrarian/librarian/internal/client/models"
)

// Repository caches captured page screenshots keyed by URL.
type Repository interface {
	// Get returns the cached entry, or common.ErrNotFound on a miss.
	Get(ctx context.Context, url string) (*models.ScreenshotCacheEntry, error)

	// Put inserts or replaces the cached entry for its URL.
	Put(ctx context.Context, e *models.ScreenshotCacheEntry) error
}
