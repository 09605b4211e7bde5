package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/locallibrarian/librarian/internal/client/migrations"
	"github.com/locallibrarian/librarian/internal/client/repositories/bookmarks"
	"github.com/locallibrarian/librarian/internal/client/repositories/folders"
	"github.com/locallibrarian/librarian/internal/client/repositories/screenshots"
	"github.com/locallibrarian/librarian/internal/client/repositories/syncstate"

	_ "modernc.org/sqlite"
)

// Repositories bundles the local-store repositories sharing one database
// handle. Services that need transactional variants construct repositories
// over a *sql.Tx themselves.
type Repositories struct {
	DB          *sql.DB
	Folders     folders.Repository
	Bookmarks   bookmarks.Repository
	Screenshots screenshots.Repository
	SyncState   syncstate.Repository
}

// InitDatabase opens (creating if needed) the local SQLite store at dsn and
// applies pending migrations.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Repositories{
		DB:          db,
		Folders:     folders.NewSQLiteRepository(db),
		Bookmarks:   bookmarks.NewSQLiteRepository(db),
		Screenshots: screenshots.NewSQLiteRepository(db),
		SyncState:   syncstate.NewSQLiteRepository(db),
	}, nil
}

// Close closes the underlying database handle.
func (r *Repositories) Close() error {
	return r.DB.Close()
}
