package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locallibrarian/librarian/internal/client/models"
	"github.com/locallibrarian/librarian/internal/client/repositories/syncstate"
	"github.com/locallibrarian/librarian/internal/common"
	"github.com/locallibrarian/librarian/internal/protocol"
)

func TestSyncOfflineIsNoop(t *testing.T) {
	repos := setupRepos(t)
	fc := &fakeClient{pingErr: errors.New("connection refused")}
	svc := NewSyncService(repos.DB, fc, testLogger())
	fsvc := NewFolderService(repos.DB, testLogger())
	ctx := context.Background()

	f, err := fsvc.AddNewFolder(ctx, "u1", "offline", "")
	require.NoError(t, err)

	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, result.Offline)
	assert.Empty(t, fc.pushed)
	assert.Zero(t, fc.pulls)

	got, err := repos.Folders.GetByID(ctx, f.FolderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, got.SyncStatus, "local state untouched while offline")
}

func TestSyncPushCreateAssignsServerID(t *testing.T) {
	repos := setupRepos(t)
	fc := &fakeClient{}
	fc.pushFn = func(req *protocol.PushRequest) (*protocol.PushResponse, error) {
		resp := &protocol.PushResponse{Success: true}
		for _, ch := range req.Changes {
			r := protocol.PushResult{ClientID: ch.ClientID(), Table: ch.Table, UpdatedAt: 1000}
			if ch.Table == protocol.TableFolders {
				id := int64(42)
				r.ServerID = &id
				r.Status = protocol.StatusCreated
			} else {
				r.Status = protocol.StatusCreated
			}
			resp.Results = append(resp.Results, r)
		}
		return resp, nil
	}
	svc := NewSyncService(repos.DB, fc, testLogger())
	fsvc := NewFolderService(repos.DB, testLogger())
	bsvc := NewBookmarkService(repos.DB, testLogger())
	ctx := context.Background()

	f, err := fsvc.AddNewFolder(ctx, "u1", "inbox", "")
	require.NoError(t, err)
	b, err := bsvc.AddBookmarkToFolder(ctx, "u1", f.FolderID, "https://example.com", "ex")
	require.NoError(t, err)

	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Pushed)

	gotF, err := repos.Folders.GetByID(ctx, f.FolderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSynced, gotF.SyncStatus)
	require.True(t, gotF.ServerID.Valid)
	assert.Equal(t, int64(42), gotF.ServerID.Int64)
	assert.Equal(t, int64(1000), gotF.UpdatedAt, "server timestamp adopted")

	gotB, err := repos.Bookmarks.GetByID(ctx, b.BookmarkID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSynced, gotB.SyncStatus)
}

func TestSyncBatchFailureMarksErrorAndSkipsPull(t *testing.T) {
	repos := setupRepos(t)
	fc := &fakeClient{}
	fc.pushFn = func(req *protocol.PushRequest) (*protocol.PushResponse, error) {
		return nil, errors.New("status 500")
	}
	svc := NewSyncService(repos.DB, fc, testLogger())
	fsvc := NewFolderService(repos.DB, testLogger())
	ctx := context.Background()

	f, err := fsvc.AddNewFolder(ctx, "u1", "doomed", "")
	require.NoError(t, err)

	_, err = svc.Sync(ctx)
	require.Error(t, err)
	assert.Zero(t, fc.pulls, "pull is skipped when the push batch fails")

	got, err := repos.Folders.GetByID(ctx, f.FolderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusError, got.SyncStatus)
}

func TestSyncRejectedItemMarksError(t *testing.T) {
	repos := setupRepos(t)
	fc := &fakeClient{}
	fc.pushFn = func(req *protocol.PushRequest) (*protocol.PushResponse, error) {
		resp := &protocol.PushResponse{Success: true}
		for _, ch := range req.Changes {
			resp.Results = append(resp.Results, protocol.PushResult{
				ClientID: ch.ClientID(),
				Table:    ch.Table,
				Status:   protocol.StatusError,
				Message:  "user mismatch",
			})
		}
		return resp, nil
	}
	svc := NewSyncService(repos.DB, fc, testLogger())
	fsvc := NewFolderService(repos.DB, testLogger())
	ctx := context.Background()

	f, err := fsvc.AddNewFolder(ctx, "u1", "rejected", "")
	require.NoError(t, err)

	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PushErrors)

	got, err := repos.Folders.GetByID(ctx, f.FolderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusError, got.SyncStatus)

	// Errored records are not retried until edited again.
	fc.pushed = nil
	_, err = svc.Sync(ctx)
	require.NoError(t, err)
	assert.Empty(t, fc.pushed, "no dirty records left to push")
}

func TestSyncPurgesNeverSyncedDeletes(t *testing.T) {
	repos := setupRepos(t)
	fc := &fakeClient{}
	svc := NewSyncService(repos.DB, fc, testLogger())
	ctx := context.Background()

	// Tombstoned but never pushed: no server interaction needed.
	require.NoError(t, repos.Folders.Upsert(ctx, &models.Folder{
		FolderID: "f1", UserID: "u1", Name: "gone",
		SyncStatus: models.StatusDeletedLocal, IsDeleted: true,
	}))

	_, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Empty(t, fc.pushed, "nothing reached the server")

	_, err = repos.Folders.GetByID(ctx, "f1")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSyncPullAppliesRecordsAndWatermarks(t *testing.T) {
	repos := setupRepos(t)
	serverID := int64(9)
	fc := &fakeClient{}
	fc.pullFn = func(foldersLast, bookmarksLast int64) (*protocol.PullResponse, error) {
		assert.Equal(t, int64(0), foldersLast, "first pull starts from zero")
		return &protocol.PullResponse{
			Folders: []protocol.Folder{{
				FolderID: "f-remote", ServerID: &serverID, UserID: "u1",
				FolderName: "shared", FolderEmoji: "🌐", CreatedAt: 10, UpdatedAt: 20,
			}},
			Bookmarks: []protocol.Bookmark{{
				BookmarkID: "b-remote", UserID: "u1", FolderID: "f-remote",
				URL: "https://example.com", Title: "ex", CreatedAt: 10, UpdatedAt: 20,
			}},
			ServerCurrentTimestamp: 12345,
		}, nil
	}
	svc := NewSyncService(repos.DB, fc, testLogger())
	ctx := context.Background()

	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Pulled)

	f, err := repos.Folders.GetByID(ctx, "f-remote")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSynced, f.SyncStatus)
	require.True(t, f.ServerID.Valid)
	assert.Equal(t, serverID, f.ServerID.Int64)

	_, err = repos.Bookmarks.GetByID(ctx, "b-remote")
	require.NoError(t, err)

	ts, err := repos.SyncState.GetTimestamp(ctx, syncstate.KeyFoldersLastSync)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), ts)
	ts, err = repos.SyncState.GetTimestamp(ctx, syncstate.KeyBookmarksLastSync)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), ts)
}

func TestSyncPullTombstoneCascades(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.Folders.Upsert(ctx, &models.Folder{
		FolderID: "f1", ServerID: sql.NullInt64{Int64: 5, Valid: true},
		UserID: "u1", Name: "work", SyncStatus: models.StatusSynced,
	}))
	require.NoError(t, repos.Bookmarks.Upsert(ctx, &models.Bookmark{
		BookmarkID: "b1", UserID: "u1", FolderID: "f1",
		URL: "https://example.com", Title: "ex", SyncStatus: models.StatusSynced,
	}))

	fc := &fakeClient{}
	fc.pullFn = func(foldersLast, bookmarksLast int64) (*protocol.PullResponse, error) {
		return &protocol.PullResponse{
			DeletedFolderIDs:       []int64{5, 999},
			ServerCurrentTimestamp: 50,
		}, nil
	}
	svc := NewSyncService(repos.DB, fc, testLogger())

	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PulledDeletes, "unknown server ids are ignored")

	_, err = repos.Folders.GetByID(ctx, "f1")
	require.ErrorIs(t, err, common.ErrNotFound)
	_, err = repos.Bookmarks.GetByID(ctx, "b1")
	require.ErrorIs(t, err, common.ErrNotFound, "folder delete cascades locally")
}

func TestSyncSingleFlight(t *testing.T) {
	repos := setupRepos(t)

	release := make(chan struct{})
	started := make(chan struct{})
	var startedOnce sync.Once
	fc := &fakeClient{}
	fc.pullFn = func(foldersLast, bookmarksLast int64) (*protocol.PullResponse, error) {
		// The final Sync below pulls again, so only the first call signals.
		startedOnce.Do(func() { close(started) })
		<-release
		return &protocol.PullResponse{ServerCurrentTimestamp: 1}, nil
	}
	svc := NewSyncService(repos.DB, fc, testLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Sync(context.Background())
		assert.NoError(t, err)
	}()

	<-started
	_, err := svc.Sync(context.Background())
	require.ErrorIs(t, err, common.ErrSyncInProgress)

	close(release)
	wg.Wait()

	// Once the first cycle finishes, syncing works again.
	_, err = svc.Sync(context.Background())
	require.NoError(t, err)
}
