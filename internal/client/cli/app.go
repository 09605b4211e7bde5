// Package cli implements the interactive Librarian command line client.
package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/locallibrarian/librarian/internal/client/client"
	"github.com/locallibrarian/librarian/internal/client/config"
	"github.com/locallibrarian/librarian/internal/client/services"
	"github.com/locallibrarian/librarian/internal/logging"
	"github.com/locallibrarian/librarian/internal/netx"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config    *config.Config
	repos     *client.Repositories
	apiClient client.Client

	folders     *services.FolderService
	bookmarks   *services.BookmarkService
	sync        *services.SyncService
	session     *services.SessionService
	screenshots *services.ScreenshotService

	userID string
	Mode   Mode
	reader *bufio.Reader
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	repos, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient := client.NewHTTPClient(c.ServerEndpointAddr, c.RequestTimeout)

	fs := services.NewFolderService(repos.DB, logger)
	bs := services.NewBookmarkService(repos.DB, logger)
	ss := services.NewSyncService(repos.DB, apiClient, logger)
	sess := services.NewSessionService(repos.DB, apiClient, fs, bs, ss, logger)
	shots := services.NewScreenshotService(repos.DB, apiClient, logger)

	// Tombstone deletes kick off a background sync so the deletion reaches
	// the server right away instead of on the next scheduled cycle.
	trigger := func() {
		go func() {
			if _, err := ss.Sync(context.Background()); err != nil {
				logger.Warn(context.Background(), "delete-triggered sync failed", "error", err)
			}
		}()
	}
	fs.SetSyncTrigger(trigger)
	bs.SetSyncTrigger(trigger)

	return &App{
		config:      c,
		repos:       repos,
		apiClient:   apiClient,
		folders:     fs,
		bookmarks:   bs,
		sync:        ss,
		session:     sess,
		screenshots: shots,
		reader:      bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.repos.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.userID != ""
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

// StartOnlineStatusWatcher periodically probes the server and flips the
// displayed mode. Each successful flip from offline to online also triggers
// a sync so queued changes drain as soon as connectivity returns.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	healthURL := strings.TrimRight(a.config.ServerEndpointAddr, "/") + "/api/health"

	for {
		select {
		case <-ticker.C:
			if !netx.IsOnline(ctx, healthURL, 3*time.Second) {
				a.setMode(ModeOffline)
				continue
			}

			wasOffline := a.Mode == ModeOffline
			a.setMode(ModeOnline)
			if wasOffline && a.isLoggedIn() {
				if _, err := a.sync.Sync(ctx); err != nil {
					log.Printf("background sync failed: %s", err.Error())
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
