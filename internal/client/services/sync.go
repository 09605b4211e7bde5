package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/locallibrarian/librarian/internal/client/client"
	"github.com/locallibrarian/librarian/internal/client/models"
	"github.com/locallibrarian/librarian/internal/client/repositories/bookmarks"
	"github.com/locallibrarian/librarian/internal/client/repositories/folders"
	"github.com/locallibrarian/librarian/internal/client/repositories/syncstate"
	"github.com/locallibrarian/librarian/internal/common"
	"github.com/locallibrarian/librarian/internal/dbx"
	"github.com/locallibrarian/librarian/internal/logging"
	"github.com/locallibrarian/librarian/internal/protocol"
)

// SyncResult summarizes one sync cycle.
type SyncResult struct {
	// Offline is true when the server was unreachable and the cycle was a
	// no-op.
	Offline bool

	// Pushed counts changes accepted by the server; PushErrors counts
	// per-item rejections.
	Pushed     int
	PushErrors int

	// Pulled counts records applied from the server, PulledDeletes the
	// tombstones applied.
	Pulled        int
	PulledDeletes int
}

// SyncService drives the push-then-pull cycle against the server. At most
// one cycle runs at a time; a trigger while one is in flight returns
// common.ErrSyncInProgress.
type SyncService struct {
	db     *sql.DB
	client client.Client
	log    logging.Logger

	mu      sync.Mutex
	syncing bool
}

// NewSyncService returns a SyncService over the given database and API client.
func NewSyncService(db *sql.DB, c client.Client, log logging.Logger) *SyncService {
	return &SyncService{db: db, client: c, log: log}
}

// Sync runs one full cycle: reachability probe, push of all dirty records,
// then pull of server changes newer than the stored watermarks. When the
// server is unreachable the cycle is a silent no-op and local state is left
// untouched.
func (s *SyncService) Sync(ctx context.Context) (*SyncResult, error) {
	s.mu.Lock()
	if s.syncing {
		s.mu.Unlock()
		return nil, common.ErrSyncInProgress
	}
	s.syncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.syncing = false
		s.mu.Unlock()
	}()

	result := &SyncResult{}

	if err := s.client.Ping(ctx); err != nil {
		s.log.Info(ctx, "server unreachable, skipping sync", "error", err)
		result.Offline = true
		return result, nil
	}

	if err := s.push(ctx, result); err != nil {
		return result, fmt.Errorf("push: %w", err)
	}

	if err := s.pull(ctx, result); err != nil {
		return result, fmt.Errorf("pull: %w", err)
	}

	return result, nil
}

// push collects all dirty records, submits them as one batch and applies the
// per-item results atomically.
func (s *SyncService) push(ctx context.Context, result *SyncResult) error {
	folderRepo := folders.NewSQLiteRepository(s.db)
	bookmarkRepo := bookmarks.NewSQLiteRepository(s.db)

	dirtyFolders, err := folderRepo.GetDirty(ctx)
	if err != nil {
		return err
	}
	dirtyBookmarks, err := bookmarkRepo.GetDirty(ctx)
	if err != nil {
		return err
	}

	var changes []protocol.ChangeItem
	var purgeFolderIDs []string

	for _, f := range dirtyFolders {
		switch f.SyncStatus {
		case models.StatusError:
			// Left for the user to resolve; retried only after an edit.
		case models.StatusNew:
			changes = append(changes, folderChange(protocol.ActionCreate, f))
		case models.StatusModified:
			if !f.ServerID.Valid {
				s.log.Warn(ctx, "modified folder has no server id, skipping", "folder_id", f.FolderID)
				continue
			}
			changes = append(changes, folderChange(protocol.ActionUpdate, f))
		case models.StatusDeletedLocal:
			if !f.ServerID.Valid {
				// Never reached the server, so nothing to propagate.
				purgeFolderIDs = append(purgeFolderIDs, f.FolderID)
				continue
			}
			changes = append(changes, folderChange(protocol.ActionDelete, f))
		}
	}

	for _, b := range dirtyBookmarks {
		switch b.SyncStatus {
		case models.StatusError:
		case models.StatusNew:
			changes = append(changes, bookmarkChange(protocol.ActionCreate, b))
		case models.StatusModified:
			changes = append(changes, bookmarkChange(protocol.ActionUpdate, b))
		case models.StatusDeletedLocal:
			changes = append(changes, bookmarkChange(protocol.ActionDelete, b))
		}
	}

	if len(purgeFolderIDs) > 0 {
		err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			fr := folders.NewSQLiteRepository(tx)
			br := bookmarks.NewSQLiteRepository(tx)
			for _, id := range purgeFolderIDs {
				if err := br.DeleteForFolder(ctx, id); err != nil {
					return err
				}
				if err := fr.Delete(ctx, id); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	if len(changes) == 0 {
		return nil
	}

	resp, err := s.client.Push(ctx, &protocol.PushRequest{Changes: changes})
	if err != nil {
		// The whole batch failed; flag every submitted record so the
		// condition is visible, then abort the cycle.
		s.log.Error(ctx, "push batch failed", "error", err, "changes", len(changes))
		markErr := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			fr := folders.NewSQLiteRepository(tx)
			br := bookmarks.NewSQLiteRepository(tx)
			for _, ch := range changes {
				if ch.Table == protocol.TableFolders {
					if err := fr.SetSyncStatus(ctx, ch.ClientID(), models.StatusError); err != nil {
						return err
					}
				} else {
					if err := br.SetSyncStatus(ctx, ch.ClientID(), models.StatusError); err != nil {
						return err
					}
				}
			}
			return nil
		})
		if markErr != nil {
			s.log.Error(ctx, "failed to flag batch records", "error", markErr)
		}
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		fr := folders.NewSQLiteRepository(tx)
		br := bookmarks.NewSQLiteRepository(tx)

		for _, r := range resp.Results {
			if err := s.applyPushResult(ctx, fr, br, r, result); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SyncService) applyPushResult(ctx context.Context, fr folders.Repository, br bookmarks.Repository, r protocol.PushResult, result *SyncResult) error {
	isFolder := r.Table == protocol.TableFolders

	switch r.Status {
	case protocol.StatusCreated:
		result.Pushed++
		if isFolder {
			if r.ServerID == nil {
				return fmt.Errorf("created folder %s without server id: %w", r.ClientID, common.ErrServerItem)
			}
			return fr.MarkCreated(ctx, r.ClientID, *r.ServerID, r.UpdatedAt)
		}
		return br.MarkSynced(ctx, r.ClientID, r.UpdatedAt)

	case protocol.StatusUpdated:
		result.Pushed++
		if isFolder {
			if r.ServerID == nil {
				return fmt.Errorf("updated folder %s without server id: %w", r.ClientID, common.ErrServerItem)
			}
			return fr.MarkSyncedByServerID(ctx, *r.ServerID, r.UpdatedAt)
		}
		return br.MarkSynced(ctx, r.ClientID, r.UpdatedAt)

	case protocol.StatusDeleted:
		result.Pushed++
		if isFolder {
			if err := br.DeleteForFolder(ctx, r.ClientID); err != nil {
				return err
			}
			return fr.Delete(ctx, r.ClientID)
		}
		return br.Delete(ctx, r.ClientID)

	case protocol.StatusError:
		result.PushErrors++
		s.log.Warn(ctx, "server rejected change", "client_id", r.ClientID, "table", r.Table, "message", r.Message)
		if isFolder {
			return fr.SetSyncStatus(ctx, r.ClientID, models.StatusError)
		}
		return br.SetSyncStatus(ctx, r.ClientID, models.StatusError)

	default:
		return fmt.Errorf("unknown push result status %q for %s: %w", r.Status, r.ClientID, common.ErrServerItem)
	}
}

// pull fetches server changes past the stored watermarks and applies records,
// tombstones and the new watermarks in one transaction.
func (s *SyncService) pull(ctx context.Context, result *SyncResult) error {
	stateRepo := syncstate.NewSQLiteRepository(s.db)

	foldersLast, err := stateRepo.GetTimestamp(ctx, syncstate.KeyFoldersLastSync)
	if err != nil {
		return err
	}
	bookmarksLast, err := stateRepo.GetTimestamp(ctx, syncstate.KeyBookmarksLastSync)
	if err != nil {
		return err
	}

	resp, err := s.client.Pull(ctx, foldersLast, bookmarksLast)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		fr := folders.NewSQLiteRepository(tx)
		br := bookmarks.NewSQLiteRepository(tx)
		sr := syncstate.NewSQLiteRepository(tx)

		for _, wf := range resp.Folders {
			if wf.FolderID == "" {
				return fmt.Errorf("pulled folder without id: %w", common.ErrServerItem)
			}
			f := models.Folder{
				FolderID:   wf.FolderID,
				UserID:     wf.UserID,
				Name:       wf.FolderName,
				Emoji:      wf.FolderEmoji,
				CreatedAt:  wf.CreatedAt,
				UpdatedAt:  wf.UpdatedAt,
				SyncStatus: models.StatusSynced,
			}
			if wf.ServerID != nil {
				f.ServerID = sql.NullInt64{Int64: *wf.ServerID, Valid: true}
			}
			if err := fr.Upsert(ctx, &f); err != nil {
				return err
			}
			result.Pulled++
		}

		for _, wb := range resp.Bookmarks {
			if wb.BookmarkID == "" {
				return fmt.Errorf("pulled bookmark without id: %w", common.ErrServerItem)
			}
			b := models.Bookmark{
				BookmarkID: wb.BookmarkID,
				UserID:     wb.UserID,
				FolderID:   wb.FolderID,
				URL:        wb.URL,
				Title:      wb.Title,
				CreatedAt:  wb.CreatedAt,
				UpdatedAt:  wb.UpdatedAt,
				SyncStatus: models.StatusSynced,
			}
			if err := br.Upsert(ctx, &b); err != nil {
				return err
			}
			result.Pulled++
		}

		for _, serverID := range resp.DeletedFolderIDs {
			f, err := fr.GetByServerID(ctx, serverID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					continue
				}
				return err
			}
			if err := br.DeleteForFolder(ctx, f.FolderID); err != nil {
				return err
			}
			if err := fr.Delete(ctx, f.FolderID); err != nil {
				return err
			}
			result.PulledDeletes++
		}

		if len(resp.DeletedBookmarkIDs) > 0 {
			if err := br.DeleteByIDs(ctx, resp.DeletedBookmarkIDs); err != nil {
				return err
			}
			result.PulledDeletes += len(resp.DeletedBookmarkIDs)
		}

		if err := sr.SetTimestamp(ctx, syncstate.KeyFoldersLastSync, resp.ServerCurrentTimestamp); err != nil {
			return err
		}
		return sr.SetTimestamp(ctx, syncstate.KeyBookmarksLastSync, resp.ServerCurrentTimestamp)
	})
}

func folderChange(action string, f models.Folder) protocol.ChangeItem {
	data := protocol.ChangeData{
		FolderID:    f.FolderID,
		UserID:      f.UserID,
		FolderName:  f.Name,
		FolderEmoji: f.Emoji,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
	if f.ServerID.Valid {
		id := f.ServerID.Int64
		data.ServerID = &id
	}
	return protocol.ChangeItem{Table: protocol.TableFolders, Action: action, Data: data}
}

func bookmarkChange(action string, b models.Bookmark) protocol.ChangeItem {
	return protocol.ChangeItem{
		Table:  protocol.TableBookmarks,
		Action: action,
		Data: protocol.ChangeData{
			BookmarkID: b.BookmarkID,
			UserID:     b.UserID,
			FolderID:   b.FolderID,
			URL:        b.URL,
			Title:      b.Title,
			CreatedAt:  b.CreatedAt,
			UpdatedAt:  b.UpdatedAt,
		},
	}
}
