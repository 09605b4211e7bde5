package syncstate

import "context"

// Well-known keys.
const (
	// KeyFoldersLastSync and KeyBookmarksLastSync are the pull watermarks:
	// the last server-reported timestamp per collection.
	KeyFoldersLastSync   = "folders_last_sync"
	KeyBookmarksLastSync = "bookmarks_last_sync"

	// Session keys for the currently signed-in user.
	KeySessionUserID = "session_user_id"
	KeySessionToken  = "session_token"
)

// SeededKey returns the per-user flag key recording that placeholder data
// was already created for that user.
func SeededKey(userID string) string {
	return "seeded_" + userID
}

// Repository is a small key/value store holding sync watermarks and session
// state. Absent keys read as empty strings, not errors.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	GetTimestamp(ctx context.Context, key string) (int64, error)
	SetTimestamp(ctx context.Context, key string, ts int64) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
