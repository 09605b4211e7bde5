// Package services implements the client-side business logic on top of the
// local store: record CRUD, the sync engine, session handling and the
// screenshot cache.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/locallibrarian/librarian/internal/client/models"
	"github.com/locallibrarian/librarian/internal/client/repositories/bookmarks"
	"github.com/locallibrarian/librarian/internal/client/repositories/folders"
	"github.com/locallibrarian/librarian/internal/common"
	"github.com/locallibrarian/librarian/internal/dbx"
	"github.com/locallibrarian/librarian/internal/logging"
)

// DefaultFolderEmoji is used when a folder is created without one.
const DefaultFolderEmoji = "📂"

// FolderService implements folder CRUD over the local store. All writes are
// local-first: they only change rows and sync statuses, never the network.
type FolderService struct {
	db          *sql.DB
	log         logging.Logger
	now         func() int64
	syncTrigger func()
}

// NewFolderService returns a FolderService over the given database.
func NewFolderService(db *sql.DB, log logging.Logger) *FolderService {
	return &FolderService{db: db, log: log, now: func() int64 { return time.Now().UnixMilli() }}
}

// SetSyncTrigger installs a callback fired after a tombstone delete, so the
// deletion propagates without waiting for the next scheduled sync.
func (s *FolderService) SetSyncTrigger(fn func()) {
	s.syncTrigger = fn
}

// AddNewFolder creates a folder with a fresh client uuid in status new.
func (s *FolderService) AddNewFolder(ctx context.Context, userID, name, emoji string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("folder name must not be empty: %w", common.ErrValidation)
	}
	if userID == "" {
		return nil, fmt.Errorf("user id must not be empty: %w", common.ErrValidation)
	}
	if emoji == "" {
		emoji = DefaultFolderEmoji
	}

	now := s.now()
	f := &models.Folder{
		FolderID:   uuid.NewString(),
		UserID:     userID,
		Name:       name,
		Emoji:      emoji,
		CreatedAt:  now,
		UpdatedAt:  now,
		SyncStatus: models.StatusNew,
	}

	if err := folders.NewSQLiteRepository(s.db).Upsert(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// UpdateFolder renames a folder and/or changes its emoji. Editing a
// tombstoned folder revives it, so the edit wins over the pending delete.
func (s *FolderService) UpdateFolder(ctx context.Context, id, name, emoji string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("folder name must not be empty: %w", common.ErrValidation)
	}

	repo := folders.NewSQLiteRepository(s.db)
	f, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	f.Name = name
	if emoji != "" {
		f.Emoji = emoji
	}
	f.IsDeleted = false
	f.SyncStatus = models.StatusAfterEdit(f.SyncStatus)
	f.UpdatedAt = s.now()

	if err := repo.Upsert(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// DeleteFolder deletes a folder and cascades to its bookmarks, atomically.
// Records the server never saw are removed outright; everything else is
// tombstoned so the deletion propagates on the next push.
func (s *FolderService) DeleteFolder(ctx context.Context, id string) error {
	tombstoned := false
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		folderRepo := folders.NewSQLiteRepository(tx)
		bookmarkRepo := bookmarks.NewSQLiteRepository(tx)

		f, err := folderRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		now := s.now()

		// Bookmarks the server never saw just disappear.
		fresh, err := bookmarkRepo.GetForFolderWithStatus(ctx, id, models.StatusNew)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(fresh))
		for _, b := range fresh {
			ids = append(ids, b.BookmarkID)
		}
		if err := bookmarkRepo.DeleteByIDs(ctx, ids); err != nil {
			return err
		}

		if f.SyncStatus == models.StatusNew {
			// Folder was never pushed, so nothing to propagate.
			if err := bookmarkRepo.DeleteForFolder(ctx, id); err != nil {
				return err
			}
			return folderRepo.Delete(ctx, id)
		}

		remaining, err := bookmarkRepo.GetForFolder(ctx, id, f.UserID)
		if err != nil {
			return err
		}
		for i := range remaining {
			b := remaining[i]
			b.IsDeleted = true
			b.SyncStatus = models.StatusDeletedLocal
			b.UpdatedAt = now
			if err := bookmarkRepo.Upsert(ctx, &b); err != nil {
				return err
			}
		}

		f.IsDeleted = true
		f.SyncStatus = models.StatusDeletedLocal
		f.UpdatedAt = now
		tombstoned = true
		return folderRepo.Upsert(ctx, f)
	})
	if err != nil {
		return err
	}

	if tombstoned && s.syncTrigger != nil {
		s.syncTrigger()
	}
	return nil
}

// GetFoldersForUser lists the user's live folders.
func (s *FolderService) GetFoldersForUser(ctx context.Context, userID string) ([]models.Folder, error) {
	return folders.NewSQLiteRepository(s.db).GetForUser(ctx, userID)
}

// GetFolderByID returns a folder by its client uuid.
func (s *FolderService) GetFolderByID(ctx context.Context, id string) (*models.Folder, error) {
	return folders.NewSQLiteRepository(s.db).GetByID(ctx, id)
}
