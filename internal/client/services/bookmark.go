package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/locallibrarian/librarian/internal/client/models"
	"github.com/locallibrarian/librarian/internal/client/repositories/bookmarks"
	"github.com/locallibrarian/librarian/internal/client/repositories/folders"
	"github.com/locallibrarian/librarian/internal/common"
	"github.com/locallibrarian/librarian/internal/logging"
)

// BookmarkService implements bookmark CRUD over the local store.
type BookmarkService struct {
	db          *sql.DB
	log         logging.Logger
	now         func() int64
	syncTrigger func()
}

// NewBookmarkService returns a BookmarkService over the given database.
func NewBookmarkService(db *sql.DB, log logging.Logger) *BookmarkService {
	return &BookmarkService{db: db, log: log, now: func() int64 { return time.Now().UnixMilli() }}
}

// SetSyncTrigger installs a callback fired after a tombstone delete, so the
// deletion propagates without waiting for the next scheduled sync.
func (s *BookmarkService) SetSyncTrigger(fn func()) {
	s.syncTrigger = fn
}

func validateBookmarkURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("bookmark url must be absolute http(s): %w", common.ErrValidation)
	}
	return raw, nil
}

// AddBookmarkToFolder creates a bookmark in status new. The owning folder
// must exist, belong to the same user and not be tombstoned.
func (s *BookmarkService) AddBookmarkToFolder(ctx context.Context, userID, folderID, rawURL, title string) (*models.Bookmark, error) {
	rawURL, err := validateBookmarkURL(rawURL)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = rawURL
	}

	f, err := folders.NewSQLiteRepository(s.db).GetByID(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("owning folder: %w", err)
	}
	if f.UserID != userID || f.IsDeleted {
		return nil, fmt.Errorf("folder %s is not available to user %s: %w", folderID, userID, common.ErrValidation)
	}

	now := s.now()
	b := &models.Bookmark{
		BookmarkID: uuid.NewString(),
		UserID:     userID,
		FolderID:   folderID,
		URL:        rawURL,
		Title:      title,
		CreatedAt:  now,
		UpdatedAt:  now,
		SyncStatus: models.StatusNew,
	}

	if err := bookmarks.NewSQLiteRepository(s.db).Upsert(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBookmark changes a bookmark's url and/or title. Editing a tombstoned
// bookmark revives it.
func (s *BookmarkService) UpdateBookmark(ctx context.Context, id, rawURL, title string) (*models.Bookmark, error) {
	repo := bookmarks.NewSQLiteRepository(s.db)
	b, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if rawURL != "" {
		rawURL, err = validateBookmarkURL(rawURL)
		if err != nil {
			return nil, err
		}
		b.URL = rawURL
	}
	if title = strings.TrimSpace(title); title != "" {
		b.Title = title
	}
	b.IsDeleted = false
	b.SyncStatus = models.StatusAfterEdit(b.SyncStatus)
	b.UpdatedAt = s.now()

	if err := repo.Upsert(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteBookmark deletes a bookmark: removed outright if the server never
// saw it, tombstoned otherwise.
func (s *BookmarkService) DeleteBookmark(ctx context.Context, id string) error {
	repo := bookmarks.NewSQLiteRepository(s.db)
	b, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if b.SyncStatus == models.StatusNew {
		return repo.Delete(ctx, id)
	}

	b.IsDeleted = true
	b.SyncStatus = models.StatusDeletedLocal
	b.UpdatedAt = s.now()
	if err := repo.Upsert(ctx, b); err != nil {
		return err
	}

	if s.syncTrigger != nil {
		s.syncTrigger()
	}
	return nil
}

// GetBookmarkByID returns a bookmark by its client uuid.
func (s *BookmarkService) GetBookmarkByID(ctx context.Context, id string) (*models.Bookmark, error) {
	return bookmarks.NewSQLiteRepository(s.db).GetByID(ctx, id)
}

// GetBookmarksForFolder lists the folder's live bookmarks owned by the user.
func (s *BookmarkService) GetBookmarksForFolder(ctx context.Context, folderID, userID string) ([]models.Bookmark, error) {
	return bookmarks.NewSQLiteRepository(s.db).GetForFolder(ctx, folderID, userID)
}
