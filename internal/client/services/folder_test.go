package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locallibrarian/librarian/internal/client/models"
	"github.com/locallibrarian/librarian/internal/common"
)

func TestAddNewFolder(t *testing.T) {
	repos := setupRepos(t)
	svc := NewFolderService(repos.DB, testLogger())
	ctx := context.Background()

	f, err := svc.AddNewFolder(ctx, "u1", "  reading  ", "")
	require.NoError(t, err)
	assert.Equal(t, "reading", f.Name)
	assert.Equal(t, DefaultFolderEmoji, f.Emoji)
	assert.Equal(t, models.StatusNew, f.SyncStatus)
	assert.NotEmpty(t, f.FolderID)
	assert.False(t, f.ServerID.Valid)

	_, err = svc.AddNewFolder(ctx, "u1", "   ", "")
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.AddNewFolder(ctx, "", "reading", "")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestUpdateFolderRevivesTombstone(t *testing.T) {
	repos := setupRepos(t)
	svc := NewFolderService(repos.DB, testLogger())
	ctx := context.Background()

	f, err := svc.AddNewFolder(ctx, "u1", "reading", "")
	require.NoError(t, err)

	// Simulate a synced then tombstoned folder.
	f.ServerID = sql.NullInt64{Int64: 7, Valid: true}
	f.SyncStatus = models.StatusDeletedLocal
	f.IsDeleted = true
	require.NoError(t, repos.Folders.Upsert(ctx, f))

	updated, err := svc.UpdateFolder(ctx, f.FolderID, "reading list", "📚")
	require.NoError(t, err)
	assert.False(t, updated.IsDeleted, "edit must win over the pending delete")
	assert.Equal(t, models.StatusModified, updated.SyncStatus)
	assert.Equal(t, "reading list", updated.Name)
	assert.Equal(t, "📚", updated.Emoji)
}

func TestUpdateFolderKeepsNewStatus(t *testing.T) {
	repos := setupRepos(t)
	svc := NewFolderService(repos.DB, testLogger())
	ctx := context.Background()

	f, err := svc.AddNewFolder(ctx, "u1", "reading", "")
	require.NoError(t, err)

	updated, err := svc.UpdateFolder(ctx, f.FolderID, "renamed", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, updated.SyncStatus, "never-pushed folder stays new")
}

func TestDeleteFolderNeverSynced(t *testing.T) {
	repos := setupRepos(t)
	fsvc := NewFolderService(repos.DB, testLogger())
	bsvc := NewBookmarkService(repos.DB, testLogger())
	ctx := context.Background()

	f, err := fsvc.AddNewFolder(ctx, "u1", "temp", "")
	require.NoError(t, err)
	b, err := bsvc.AddBookmarkToFolder(ctx, "u1", f.FolderID, "https://example.com", "ex")
	require.NoError(t, err)

	require.NoError(t, fsvc.DeleteFolder(ctx, f.FolderID))

	_, err = repos.Folders.GetByID(ctx, f.FolderID)
	require.ErrorIs(t, err, common.ErrNotFound, "never-pushed folder is removed outright")
	_, err = repos.Bookmarks.GetByID(ctx, b.BookmarkID)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteFolderSyncedCascades(t *testing.T) {
	repos := setupRepos(t)
	fsvc := NewFolderService(repos.DB, testLogger())
	bsvc := NewBookmarkService(repos.DB, testLogger())
	ctx := context.Background()

	f, err := fsvc.AddNewFolder(ctx, "u1", "work", "")
	require.NoError(t, err)
	f.ServerID = sql.NullInt64{Int64: 5, Valid: true}
	f.SyncStatus = models.StatusSynced
	require.NoError(t, repos.Folders.Upsert(ctx, f))

	synced, err := bsvc.AddBookmarkToFolder(ctx, "u1", f.FolderID, "https://a.example.com", "a")
	require.NoError(t, err)
	require.NoError(t, repos.Bookmarks.MarkSynced(ctx, synced.BookmarkID, 100))

	fresh, err := bsvc.AddBookmarkToFolder(ctx, "u1", f.FolderID, "https://b.example.com", "b")
	require.NoError(t, err)

	require.NoError(t, fsvc.DeleteFolder(ctx, f.FolderID))

	got, err := repos.Folders.GetByID(ctx, f.FolderID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
	assert.Equal(t, models.StatusDeletedLocal, got.SyncStatus)

	gotB, err := repos.Bookmarks.GetByID(ctx, synced.BookmarkID)
	require.NoError(t, err)
	assert.True(t, gotB.IsDeleted)
	assert.Equal(t, models.StatusDeletedLocal, gotB.SyncStatus)

	_, err = repos.Bookmarks.GetByID(ctx, fresh.BookmarkID)
	require.ErrorIs(t, err, common.ErrNotFound, "never-pushed bookmark is purged, not tombstoned")
}

func TestGetFoldersForUserExcludesTombstones(t *testing.T) {
	repos := setupRepos(t)
	svc := NewFolderService(repos.DB, testLogger())
	ctx := context.Background()

	live, err := svc.AddNewFolder(ctx, "u1", "live", "")
	require.NoError(t, err)
	dead, err := svc.AddNewFolder(ctx, "u1", "dead", "")
	require.NoError(t, err)
	dead.SyncStatus = models.StatusDeletedLocal
	dead.IsDeleted = true
	require.NoError(t, repos.Folders.Upsert(ctx, dead))

	fs, err := svc.GetFoldersForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, fs, 1)
	assert.Equal(t, live.FolderID, fs[0].FolderID)
}

func TestDeleteFolderTriggersSyncOnlyForTombstones(t *testing.T) {
	repos := setupRepos(t)
	svc := NewFolderService(repos.DB, testLogger())
	ctx := context.Background()

	triggers := 0
	svc.SetSyncTrigger(func() { triggers++ })

	fresh, err := svc.AddNewFolder(ctx, "u1", "fresh", "")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteFolder(ctx, fresh.FolderID))
	assert.Zero(t, triggers, "hard delete of a never-pushed folder has nothing to propagate")

	synced, err := svc.AddNewFolder(ctx, "u1", "synced", "")
	require.NoError(t, err)
	require.NoError(t, repos.Folders.MarkCreated(ctx, synced.FolderID, 7, 100))
	require.NoError(t, svc.DeleteFolder(ctx, synced.FolderID))
	assert.Equal(t, 1, triggers)
}
