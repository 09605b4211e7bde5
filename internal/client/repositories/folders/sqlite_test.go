package folders

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locallibrarian/librarian/internal/client/models"
	"github.com/locallibrarian/librarian/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE folders (
  folder_id TEXT PRIMARY KEY,
  server_id INTEGER,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  emoji TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  sync_status TEXT NOT NULL,
  is_deleted INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)

	return db
}

func newFolder(id, userID string, status models.SyncStatus) *models.Folder {
	return &models.Folder{
		FolderID:   id,
		UserID:     userID,
		Name:       "reading",
		Emoji:      "📚",
		CreatedAt:  100,
		UpdatedAt:  100,
		SyncStatus: status,
	}
}

func TestUpsert_InsertAndReplace(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	f := newFolder("f1", "u1", models.StatusNew)
	require.NoError(t, r.Upsert(ctx, f))

	got, err := r.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "reading", got.Name)
	assert.False(t, got.ServerID.Valid)

	f.Name = "reading list"
	f.ServerID = sql.NullInt64{Int64: 42, Valid: true}
	f.SyncStatus = models.StatusSynced
	require.NoError(t, r.Upsert(ctx, f))

	got, err = r.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "reading list", got.Name)
	assert.Equal(t, int64(42), got.ServerID.Int64)
	assert.Equal(t, models.StatusSynced, got.SyncStatus)
}

func TestGetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetByServerID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	f := newFolder("f1", "u1", models.StatusSynced)
	f.ServerID = sql.NullInt64{Int64: 7, Valid: true}
	require.NoError(t, r.Upsert(ctx, f))

	got, err := r.GetByServerID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "f1", got.FolderID)

	_, err = r.GetByServerID(ctx, 8)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetForUser_ExcludesTombstonesAndOtherUsers(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, newFolder("f1", "u1", models.StatusSynced)))

	tomb := newFolder("f2", "u1", models.StatusDeletedLocal)
	tomb.IsDeleted = true
	require.NoError(t, r.Upsert(ctx, tomb))

	require.NoError(t, r.Upsert(ctx, newFolder("f3", "u2", models.StatusSynced)))

	got, err := r.GetForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "f1", got[0].FolderID)

	got, err = r.GetForUser(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetDirty(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, newFolder("f1", "u1", models.StatusNew)))
	require.NoError(t, r.Upsert(ctx, newFolder("f2", "u1", models.StatusModified)))
	require.NoError(t, r.Upsert(ctx, newFolder("f3", "u1", models.StatusSynced)))
	require.NoError(t, r.Upsert(ctx, newFolder("f4", "u1", models.StatusDeletedLocal)))

	got, err := r.GetDirty(ctx)
	require.NoError(t, err)

	ids := make(map[string]struct{})
	for _, f := range got {
		ids[f.FolderID] = struct{}{}
	}
	assert.Equal(t, map[string]struct{}{"f1": {}, "f2": {}, "f4": {}}, ids)
}

func TestMarkCreated(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, newFolder("f1", "u1", models.StatusNew)))
	require.NoError(t, r.MarkCreated(ctx, "f1", 99, 500))

	got, err := r.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, int64(99), got.ServerID.Int64)
	assert.Equal(t, int64(500), got.UpdatedAt)
	assert.Equal(t, models.StatusSynced, got.SyncStatus)
}

func TestMarkSyncedByServerID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	f := newFolder("f1", "u1", models.StatusModified)
	f.ServerID = sql.NullInt64{Int64: 5, Valid: true}
	require.NoError(t, r.Upsert(ctx, f))

	require.NoError(t, r.MarkSyncedByServerID(ctx, 5, 700))

	got, err := r.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSynced, got.SyncStatus)
	assert.Equal(t, int64(700), got.UpdatedAt)

	require.ErrorIs(t, r.MarkSyncedByServerID(ctx, 6, 700), common.ErrNotFound)
}

func TestDeleteAndDeleteForUser(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, newFolder("f1", "u1", models.StatusSynced)))
	require.NoError(t, r.Upsert(ctx, newFolder("f2", "u1", models.StatusSynced)))
	require.NoError(t, r.Upsert(ctx, newFolder("f3", "u2", models.StatusSynced)))

	require.NoError(t, r.Delete(ctx, "f1"))
	_, err := r.GetByID(ctx, "f1")
	require.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, r.DeleteForUser(ctx, "u1"))
	_, err = r.GetByID(ctx, "f2")
	require.ErrorIs(t, err, common.ErrNotFound)

	got, err := r.GetForUser(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestUpsert_WriteFailureWrapsPersistence(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	err := repo.Upsert(context.Background(), &models.Folder{
		FolderID: "f1", UserID: "u1", Name: "n", SyncStatus: models.StatusNew,
	})
	require.ErrorIs(t, err, common.ErrPersistence)
}
