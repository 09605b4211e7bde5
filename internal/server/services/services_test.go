package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/locallibrarian/librarian/internal/common"
	"github.com/locallibrarian/librarian/internal/dbx"
	"github.com/locallibrarian/librarian/internal/logging"
	"github.com/locallibrarian/librarian/internal/server/models"
	"github.com/locallibrarian/librarian/internal/server/repositories/bookmarks"
	"github.com/locallibrarian/librarian/internal/server/repositories/folders"

	_ "modernc.org/sqlite"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// txDB returns a throwaway database used only as a transaction carrier for
// dbx.WithTx; the in-memory repositories below never touch it.
func txDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// memManager is an in-memory RepositoryManager for service tests.
type memManager struct {
	folders   *memFolders
	bookmarks *memBookmarks
}

func newMemManager() *memManager {
	return &memManager{
		folders:   &memFolders{byID: map[int64]*models.Folder{}, nextID: 1},
		bookmarks: &memBookmarks{byID: map[string]*models.Bookmark{}},
	}
}

func (m *memManager) Folders(db dbx.DBTX) folders.Repository     { return m.folders }
func (m *memManager) Bookmarks(db dbx.DBTX) bookmarks.Repository { return m.bookmarks }
func (m *memManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

type memFolders struct {
	byID   map[int64]*models.Folder
	nextID int64
}

func (r *memFolders) Create(ctx context.Context, f *models.Folder) (int64, error) {
	c := *f
	c.ID = r.nextID
	r.nextID++
	r.byID[c.ID] = &c
	return c.ID, nil
}

func (r *memFolders) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	f, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("folder %d: %w", id, common.ErrNotFound)
	}
	c := *f
	return &c, nil
}

func (r *memFolders) GetByClientID(ctx context.Context, clientFolderID string) (*models.Folder, error) {
	for _, f := range r.byID {
		if f.ClientFolderID == clientFolderID {
			c := *f
			return &c, nil
		}
	}
	return nil, fmt.Errorf("folder %s: %w", clientFolderID, common.ErrNotFound)
}

func (r *memFolders) Update(ctx context.Context, f *models.Folder) error {
	existing, ok := r.byID[f.ID]
	if !ok {
		return fmt.Errorf("folder %d: %w", f.ID, common.ErrNotFound)
	}
	existing.Name = f.Name
	existing.Emoji = f.Emoji
	existing.UpdatedAt = f.UpdatedAt
	return nil
}

func (r *memFolders) SoftDelete(ctx context.Context, id int64, ts int64) error {
	f, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("folder %d: %w", id, common.ErrNotFound)
	}
	f.IsDeleted = true
	f.UpdatedAt = ts
	return nil
}

func (r *memFolders) SelectUpdated(ctx context.Context, userID string, since int64) ([]models.Folder, error) {
	var fs []models.Folder
	for _, f := range r.byID {
		if f.UserID == userID && f.UpdatedAt > since && !f.IsDeleted {
			fs = append(fs, *f)
		}
	}
	sort.Slice(fs, func(i, j int) bool { return fs[i].ID < fs[j].ID })
	return fs, nil
}

func (r *memFolders) SelectDeletedIDs(ctx context.Context, userID string, since int64) ([]int64, error) {
	var ids []int64
	for _, f := range r.byID {
		if f.UserID == userID && f.UpdatedAt > since && f.IsDeleted {
			ids = append(ids, f.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *memFolders) PurgeDeletedBefore(ctx context.Context, cutoff int64) (int64, error) {
	var n int64
	for id, f := range r.byID {
		if f.IsDeleted && f.UpdatedAt < cutoff {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

type memBookmarks struct {
	byID map[string]*models.Bookmark
}

func (r *memBookmarks) Create(ctx context.Context, b *models.Bookmark) error {
	c := *b
	r.byID[c.ID] = &c
	return nil
}

func (r *memBookmarks) GetByID(ctx context.Context, id string) (*models.Bookmark, error) {
	b, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("bookmark %s: %w", id, common.ErrNotFound)
	}
	c := *b
	return &c, nil
}

func (r *memBookmarks) Update(ctx context.Context, b *models.Bookmark) error {
	existing, ok := r.byID[b.ID]
	if !ok {
		return fmt.Errorf("bookmark %s: %w", b.ID, common.ErrNotFound)
	}
	existing.FolderID = b.FolderID
	existing.URL = b.URL
	existing.Title = b.Title
	existing.UpdatedAt = b.UpdatedAt
	existing.IsDeleted = false
	return nil
}

func (r *memBookmarks) SoftDelete(ctx context.Context, id string, ts int64) error {
	b, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("bookmark %s: %w", id, common.ErrNotFound)
	}
	b.IsDeleted = true
	b.UpdatedAt = ts
	return nil
}

func (r *memBookmarks) SoftDeleteForFolder(ctx context.Context, userID, folderID string, ts int64) error {
	for _, b := range r.byID {
		if b.UserID == userID && b.FolderID == folderID && !b.IsDeleted {
			b.IsDeleted = true
			b.UpdatedAt = ts
		}
	}
	return nil
}

func (r *memBookmarks) SelectUpdated(ctx context.Context, userID string, since int64) ([]models.Bookmark, error) {
	var bs []models.Bookmark
	for _, b := range r.byID {
		if b.UserID == userID && b.UpdatedAt > since && !b.IsDeleted {
			bs = append(bs, *b)
		}
	}
	sort.Slice(bs, func(i, j int) bool { return bs[i].ID < bs[j].ID })
	return bs, nil
}

func (r *memBookmarks) SelectDeletedIDs(ctx context.Context, userID string, since int64) ([]string, error) {
	var ids []string
	for _, b := range r.byID {
		if b.UserID == userID && b.UpdatedAt > since && b.IsDeleted {
			ids = append(ids, b.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memBookmarks) PurgeDeletedBefore(ctx context.Context, cutoff int64) (int64, error) {
	var n int64
	for id, b := range r.byID {
		if b.IsDeleted && b.UpdatedAt < cutoff {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}
