package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/locallibrarian/librarian/internal/client/client"
	"github.com/locallibrarian/librarian/internal/client/models"
	"github.com/locallibrarian/librarian/internal/client/repositories/screenshots"
	"github.com/locallibrarian/librarian/internal/common"
	"github.com/locallibrarian/librarian/internal/logging"
)

// ScreenshotService serves page screenshots from the local cache, asking the
// server to capture on a miss.
type ScreenshotService struct {
	db     *sql.DB
	client client.Client
	log    logging.Logger
	now    func() int64
}

// NewScreenshotService returns a ScreenshotService over the given database
// and API client.
func NewScreenshotService(db *sql.DB, c client.Client, log logging.Logger) *ScreenshotService {
	return &ScreenshotService{db: db, client: c, log: log, now: func() int64 { return time.Now().UnixMilli() }}
}

// GetScreenshot returns the cached screenshot for url, capturing and caching
// it first when absent.
func (s *ScreenshotService) GetScreenshot(ctx context.Context, url string) (*models.ScreenshotCacheEntry, error) {
	repo := screenshots.NewSQLiteRepository(s.db)

	cached, err := repo.Get(ctx, url)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	shot, err := s.client.CaptureScreenshot(ctx, url)
	if err != nil {
		return nil, err
	}

	entry := &models.ScreenshotCacheEntry{
		URL:         url,
		ImageBase64: shot.ImageBase64,
		CreatedAt:   s.now(),
	}
	if err := repo.Put(ctx, entry); err != nil {
		s.log.Warn(ctx, "failed to cache screenshot", "url", url, "error", err)
	}
	return entry, nil
}
