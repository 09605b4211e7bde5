package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/locallibrarian/librarian/internal/client/client"
	"github.com/locallibrarian/librarian/internal/client/repositories/bookmarks"
	"github.com/locallibrarian/librarian/internal/client/repositories/folders"
	"github.com/locallibrarian/librarian/internal/client/repositories/syncstate"
	"github.com/locallibrarian/librarian/internal/dbx"
	"github.com/locallibrarian/librarian/internal/logging"
	"github.com/locallibrarian/librarian/internal/protocol"
)

// seedFolder describes one placeholder folder created on a user's first
// sign-in, with a few starter bookmarks.
type seedFolder struct {
	name      string
	emoji     string
	bookmarks []struct{ url, title string }
}

var seedFolders = []seedFolder{
	{name: "general", emoji: "🌐", bookmarks: []struct{ url, title string }{
		{"https://news.ycombinator.com", "Hacker News"},
		{"https://developer.mozilla.org", "MDN Web Docs"},
	}},
	{name: "tools", emoji: "🛠️", bookmarks: []struct{ url, title string }{
		{"https://regex101.com", "Regex 101"},
		{"https://excalidraw.com", "Excalidraw"},
	}},
	{name: "components", emoji: "🧩", bookmarks: []struct{ url, title string }{
		{"https://ui.shadcn.com", "shadcn/ui"},
	}},
	{name: "portfolios", emoji: "💼", bookmarks: nil},
}

// SessionService manages sign-in, sign-out and session restoration.
type SessionService struct {
	db        *sql.DB
	client    client.Client
	foldersSv *FolderService
	bookmarks *BookmarkService
	sync      *SyncService
	log       logging.Logger
}

// NewSessionService returns a SessionService wired to the record services
// and the sync engine.
func NewSessionService(db *sql.DB, c client.Client, fs *FolderService, bs *BookmarkService, ss *SyncService, log logging.Logger) *SessionService {
	return &SessionService{db: db, client: c, foldersSv: fs, bookmarks: bs, sync: ss, log: log}
}

// SignIn exchanges the provider token for a session, persists it, seeds
// placeholder data on the user's very first sign-in and kicks off a sync.
// The sync itself is best effort; a sync failure does not fail the sign-in.
func (s *SessionService) SignIn(ctx context.Context, userID, providerToken string) error {
	token, err := s.client.Login(ctx, &protocol.SessionRequest{UserID: userID, ProviderToken: providerToken})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	s.client.SetToken(token)

	stateRepo := syncstate.NewSQLiteRepository(s.db)
	if err := stateRepo.Set(ctx, syncstate.KeySessionUserID, userID); err != nil {
		return err
	}
	if err := stateRepo.Set(ctx, syncstate.KeySessionToken, token); err != nil {
		return err
	}

	if err := s.seedOnce(ctx, userID); err != nil {
		return err
	}

	if _, err := s.sync.Sync(ctx); err != nil {
		s.log.Warn(ctx, "post-login sync failed", "error", err)
	}
	return nil
}

// Restore reloads a persisted session. It returns the signed-in user id, or
// ok=false when no session is stored.
func (s *SessionService) Restore(ctx context.Context) (userID string, ok bool, err error) {
	stateRepo := syncstate.NewSQLiteRepository(s.db)

	userID, err = stateRepo.Get(ctx, syncstate.KeySessionUserID)
	if err != nil {
		return "", false, err
	}
	token, err := stateRepo.Get(ctx, syncstate.KeySessionToken)
	if err != nil {
		return "", false, err
	}
	if userID == "" || token == "" {
		return "", false, nil
	}

	s.client.SetToken(token)
	return userID, true, nil
}

// SignOut drops the session and removes the user's local data and sync
// watermarks. Server-side data is untouched and comes back on the next
// sign-in's pull. The seeded flag survives so placeholder data is created
// only once per user ever.
func (s *SessionService) SignOut(ctx context.Context, userID string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := bookmarks.NewSQLiteRepository(tx).DeleteForUser(ctx, userID); err != nil {
			return err
		}
		if err := folders.NewSQLiteRepository(tx).DeleteForUser(ctx, userID); err != nil {
			return err
		}

		sr := syncstate.NewSQLiteRepository(tx)
		for _, key := range []string{
			syncstate.KeySessionUserID,
			syncstate.KeySessionToken,
			syncstate.KeyFoldersLastSync,
			syncstate.KeyBookmarksLastSync,
		} {
			if err := sr.Delete(ctx, key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.client.SetToken("")
	return nil
}

// seedOnce creates the placeholder folders and bookmarks the first time a
// user signs in on this device. Everything is created in status new, so the
// following sync pushes it like any user-made data.
func (s *SessionService) seedOnce(ctx context.Context, userID string) error {
	stateRepo := syncstate.NewSQLiteRepository(s.db)

	seeded, err := stateRepo.Get(ctx, syncstate.SeededKey(userID))
	if err != nil {
		return err
	}
	if seeded != "" {
		return nil
	}

	for _, sf := range seedFolders {
		f, err := s.foldersSv.AddNewFolder(ctx, userID, sf.name, sf.emoji)
		if err != nil {
			return fmt.Errorf("seed folder %s: %w", sf.name, err)
		}
		for _, sb := range sf.bookmarks {
			if _, err := s.bookmarks.AddBookmarkToFolder(ctx, userID, f.FolderID, sb.url, sb.title); err != nil {
				return fmt.Errorf("seed bookmark %s: %w", sb.url, err)
			}
		}
	}

	return stateRepo.Set(ctx, syncstate.SeededKey(userID), "1")
}
