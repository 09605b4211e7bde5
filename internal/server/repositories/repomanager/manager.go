// Package repomanager constructs server repositories over a shared database
// handle or transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/locallibrarian/librarian/internal/dbx"
	"github.com/locallibrarian/librarian/internal/server/repositories/bookmarks"
	"github.com/locallibrarian/librarian/internal/server/repositories/folders"
)

// RepositoryManager hands out repositories bound to the given DBTX, so a
// service can use the same accessors inside and outside a transaction.
type RepositoryManager interface {
	Folders(db dbx.DBTX) folders.Repository
	Bookmarks(db dbx.DBTX) bookmarks.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
