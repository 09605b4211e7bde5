// Package services implements the server-side business logic: push/pull
// processing, session issuing, tombstone purging and screenshot capture.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/locallibrarian/librarian/internal/common"
	"github.com/locallibrarian/librarian/internal/dbx"
	"github.com/locallibrarian/librarian/internal/logging"
	"github.com/locallibrarian/librarian/internal/protocol"
	"github.com/locallibrarian/librarian/internal/server/models"
	"github.com/locallibrarian/librarian/internal/server/repositories/repomanager"
)

// SyncService processes push batches and pull requests for one user at a
// time, stamping every accepted change of a batch with one shared timestamp.
type SyncService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	log   logging.Logger
	now   func() int64
}

// NewSyncService returns a SyncService over the given database.
func NewSyncService(db *sql.DB, repos repomanager.RepositoryManager, log logging.Logger) *SyncService {
	return &SyncService{db: db, repos: repos, log: log, now: func() int64 { return time.Now().UnixMilli() }}
}

// ProcessPush applies a batch of client changes. Items are independent: a
// rejected item yields an error result and the rest of the batch proceeds.
// All accepted changes carry the same server timestamp so the client's
// watermarks stay consistent.
func (s *SyncService) ProcessPush(ctx context.Context, userID string, req *protocol.PushRequest) *protocol.PushResponse {
	requestTS := s.now()
	resp := &protocol.PushResponse{Success: true}

	for _, ch := range req.Changes {
		result := s.processChange(ctx, userID, ch, requestTS)
		resp.Results = append(resp.Results, result)
	}
	return resp
}

func (s *SyncService) processChange(ctx context.Context, userID string, ch protocol.ChangeItem, requestTS int64) protocol.PushResult {
	result := protocol.PushResult{ClientID: ch.ClientID(), Table: ch.Table}

	if ch.Data.UserID != userID {
		result.Status = protocol.StatusError
		result.Message = "change does not belong to the authenticated user"
		return result
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		switch ch.Table {
		case protocol.TableFolders:
			return s.processFolderChange(ctx, tx, ch, requestTS, &result)
		case protocol.TableBookmarks:
			return s.processBookmarkChange(ctx, tx, ch, requestTS, &result)
		default:
			return fmt.Errorf("unknown table %q", ch.Table)
		}
	})
	if err != nil {
		s.log.Warn(ctx, "change rejected", "client_id", result.ClientID, "table", ch.Table, "action", ch.Action, "error", err)
		result.Status = protocol.StatusError
		result.Message = err.Error()
	}
	return result
}

func (s *SyncService) processFolderChange(ctx context.Context, tx dbx.DBTX, ch protocol.ChangeItem, requestTS int64, result *protocol.PushResult) error {
	repo := s.repos.Folders(tx)

	switch ch.Action {
	case protocol.ActionCreate:
		// A retry of a create whose response got lost must not duplicate
		// the folder.
		existing, err := repo.GetByClientID(ctx, ch.Data.FolderID)
		if err == nil {
			if existing.UserID != ch.Data.UserID {
				return fmt.Errorf("folder %s already exists", ch.Data.FolderID)
			}
			result.Status = protocol.StatusCreated
			result.ServerID = &existing.ID
			result.UpdatedAt = existing.UpdatedAt
			return nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}

		id, err := repo.Create(ctx, &models.Folder{
			ClientFolderID: ch.Data.FolderID,
			UserID:         ch.Data.UserID,
			Name:           ch.Data.FolderName,
			Emoji:          ch.Data.FolderEmoji,
			CreatedAt:      ch.Data.CreatedAt,
			UpdatedAt:      requestTS,
		})
		if err != nil {
			return err
		}
		result.Status = protocol.StatusCreated
		result.ServerID = &id
		result.UpdatedAt = requestTS
		return nil

	case protocol.ActionUpdate, protocol.ActionDelete:
		if ch.Data.ServerID == nil {
			return errors.New("folder change without server id")
		}
		f, err := repo.GetByID(ctx, *ch.Data.ServerID)
		if err != nil {
			return err
		}
		if f.UserID != ch.Data.UserID {
			return fmt.Errorf("folder %d belongs to another user", f.ID)
		}

		if ch.Action == protocol.ActionDelete {
			if err := repo.SoftDelete(ctx, f.ID, requestTS); err != nil {
				return err
			}
			// Deleting a folder deletes its bookmarks, so other devices
			// pull both tombstone sets.
			if err := s.repos.Bookmarks(tx).SoftDeleteForFolder(ctx, f.UserID, f.ClientFolderID, requestTS); err != nil {
				return err
			}
			result.Status = protocol.StatusDeleted
			result.ServerID = &f.ID
			return nil
		}

		f.Name = ch.Data.FolderName
		f.Emoji = ch.Data.FolderEmoji
		f.UpdatedAt = requestTS
		if err := repo.Update(ctx, f); err != nil {
			return err
		}
		result.Status = protocol.StatusUpdated
		result.ServerID = &f.ID
		result.UpdatedAt = requestTS
		return nil

	default:
		return fmt.Errorf("unknown action %q", ch.Action)
	}
}

func (s *SyncService) processBookmarkChange(ctx context.Context, tx dbx.DBTX, ch protocol.ChangeItem, requestTS int64, result *protocol.PushResult) error {
	repo := s.repos.Bookmarks(tx)

	existing, err := repo.GetByID(ctx, ch.Data.BookmarkID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}
	found := err == nil
	if found && existing.UserID != ch.Data.UserID {
		return fmt.Errorf("bookmark %s belongs to another user", existing.ID)
	}

	switch ch.Action {
	case protocol.ActionCreate, protocol.ActionUpdate:
		b := &models.Bookmark{
			ID:        ch.Data.BookmarkID,
			UserID:    ch.Data.UserID,
			FolderID:  ch.Data.FolderID,
			URL:       ch.Data.URL,
			Title:     ch.Data.Title,
			CreatedAt: ch.Data.CreatedAt,
			UpdatedAt: requestTS,
		}
		if found {
			if err := repo.Update(ctx, b); err != nil {
				return err
			}
		} else {
			if ch.Action == protocol.ActionUpdate {
				return fmt.Errorf("bookmark %s: %w", ch.Data.BookmarkID, common.ErrNotFound)
			}
			if err := repo.Create(ctx, b); err != nil {
				return err
			}
		}
		if ch.Action == protocol.ActionCreate {
			result.Status = protocol.StatusCreated
		} else {
			result.Status = protocol.StatusUpdated
		}
		result.UpdatedAt = requestTS
		return nil

	case protocol.ActionDelete:
		// Deleting an already-absent bookmark is a no-op, not an error.
		if found {
			if err := repo.SoftDelete(ctx, existing.ID, requestTS); err != nil {
				return err
			}
		}
		result.Status = protocol.StatusDeleted
		return nil

	default:
		return fmt.Errorf("unknown action %q", ch.Action)
	}
}

// ProcessPull returns the user's records and tombstones changed after the
// given watermarks. The reported server timestamp is captured before the
// queries run, so a write racing with the pull is seen again next cycle
// instead of being skipped.
func (s *SyncService) ProcessPull(ctx context.Context, userID string, foldersLast, bookmarksLast int64) (*protocol.PullResponse, error) {
	now := s.now()

	folderRepo := s.repos.Folders(s.db)
	bookmarkRepo := s.repos.Bookmarks(s.db)

	fs, err := folderRepo.SelectUpdated(ctx, userID, foldersLast)
	if err != nil {
		return nil, err
	}
	deletedFolders, err := folderRepo.SelectDeletedIDs(ctx, userID, foldersLast)
	if err != nil {
		return nil, err
	}
	bs, err := bookmarkRepo.SelectUpdated(ctx, userID, bookmarksLast)
	if err != nil {
		return nil, err
	}
	deletedBookmarks, err := bookmarkRepo.SelectDeletedIDs(ctx, userID, bookmarksLast)
	if err != nil {
		return nil, err
	}

	resp := &protocol.PullResponse{
		DeletedFolderIDs:       deletedFolders,
		DeletedBookmarkIDs:     deletedBookmarks,
		ServerCurrentTimestamp: now,
	}
	for _, f := range fs {
		id := f.ID
		resp.Folders = append(resp.Folders, protocol.Folder{
			FolderID:    f.ClientFolderID,
			ServerID:    &id,
			UserID:      f.UserID,
			FolderName:  f.Name,
			FolderEmoji: f.Emoji,
			CreatedAt:   f.CreatedAt,
			UpdatedAt:   f.UpdatedAt,
		})
	}
	for _, b := range bs {
		resp.Bookmarks = append(resp.Bookmarks, protocol.Bookmark{
			BookmarkID: b.ID,
			UserID:     b.UserID,
			FolderID:   b.FolderID,
			URL:        b.URL,
			Title:      b.Title,
			CreatedAt:  b.CreatedAt,
			UpdatedAt:  b.UpdatedAt,
		})
	}
	return resp, nil
}
