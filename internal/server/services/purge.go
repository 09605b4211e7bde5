package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/locallibrarian/librarian/internal/logging"
	"github.com/locallibrarian/librarian/internal/server/repositories/repomanager"
)

// PurgeService removes soft-deleted rows once they are old enough that every
// client with a plausible offline window has pulled the deletion.
type PurgeService struct {
	db        *sql.DB
	repos     repomanager.RepositoryManager
	retention time.Duration
	log       logging.Logger
	now       func() int64
}

// NewPurgeService returns a PurgeService with the given tombstone retention.
func NewPurgeService(db *sql.DB, repos repomanager.RepositoryManager, retention time.Duration, log logging.Logger) *PurgeService {
	return &PurgeService{
		db:        db,
		repos:     repos,
		retention: retention,
		log:       log,
		now:       func() int64 { return time.Now().UnixMilli() },
	}
}

// Purge hard-deletes tombstones older than the retention window.
func (s *PurgeService) Purge(ctx context.Context) error {
	cutoff := s.now() - s.retention.Milliseconds()

	bookmarks, err := s.repos.Bookmarks(s.db).PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	folders, err := s.repos.Folders(s.db).PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	s.log.Info(ctx, "tombstones purged", "folders", folders, "bookmarks", bookmarks, "cutoff", cutoff)
	return nil
}
