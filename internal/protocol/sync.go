// Package protocol defines the JSON wire contract shared by the client sync
// engine and the server push/pull endpoints.
package protocol

// Change tables.
const (
	TableFolders   = "folders"
	TableBookmarks = "bookmarks"
)

// Change actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Per-item result statuses returned by the push endpoint.
const (
	StatusCreated = "created"
	StatusUpdated = "updated"
	StatusDeleted = "deleted"
	StatusError   = "error"
)

// ChangeData carries the record fields of a single change. It is the union
// of folder and bookmark payloads; which fields are meaningful follows from
// ChangeItem.Table and ChangeItem.Action.
type ChangeData struct {
	FolderID    string `json:"folder_id,omitempty"`
	BookmarkID  string `json:"bookmark_id,omitempty"`
	ServerID    *int64 `json:"server_id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	FolderName  string `json:"folder_name,omitempty"`
	FolderEmoji string `json:"folder_emoji,omitempty"`
	URL         string `json:"url,omitempty"`
	Title       string `json:"title,omitempty"`
	CreatedAt   int64  `json:"created_at,omitempty"`
	UpdatedAt   int64  `json:"updated_at,omitempty"`
}

// ChangeItem is one entry of a push batch.
type ChangeItem struct {
	Table  string     `json:"table"`
	Action string     `json:"action"`
	Data   ChangeData `json:"data"`
}

// ClientID returns the client-side identifier used to correlate this change
// with its per-item result: the folder uuid for folder changes, the bookmark
// uuid otherwise.
func (c ChangeItem) ClientID() string {
	if c.Table == TableFolders {
		return c.Data.FolderID
	}
	return c.Data.BookmarkID
}

// PushRequest is the body of POST /api/sync/push.
type PushRequest struct {
	Changes []ChangeItem `json:"changes"`
}

// PushResult reports the outcome of one submitted change.
type PushResult struct {
	ClientID  string `json:"client_id"`
	ServerID  *int64 `json:"server_id,omitempty"`
	Status    string `json:"status"`
	UpdatedAt int64  `json:"updated_at,omitempty"`
	Message   string `json:"message,omitempty"`
	Table     string `json:"table,omitempty"`
}

// PushResponse is the body of a successful push.
type PushResponse struct {
	Success bool         `json:"success"`
	Results []PushResult `json:"results"`
}

// Folder is the wire form of a folder record returned by pull.
type Folder struct {
	FolderID    string `json:"folder_id"`
	ServerID    *int64 `json:"server_id,omitempty"`
	UserID      string `json:"user_id"`
	FolderName  string `json:"folder_name"`
	FolderEmoji string `json:"folder_emoji"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
	IsDeleted   bool   `json:"is_deleted,omitempty"`
}

// Bookmark is the wire form of a bookmark record returned by pull.
type Bookmark struct {
	BookmarkID string `json:"bookmark_id"`
	UserID     string `json:"user_id"`
	FolderID   string `json:"folder_id"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	CreatedAt  int64  `json:"created_at"`
	UpdatedAt  int64  `json:"updated_at"`
	IsDeleted  bool   `json:"is_deleted,omitempty"`
}

// PullResponse is the body of GET /api/sync/pull.
// DeletedFolderIDs carries server ids (folders are keyed remotely by an
// auto-increment id); DeletedBookmarkIDs carries bookmark uuids, which are
// the shared key on both sides.
type PullResponse struct {
	Folders                []Folder   `json:"folders"`
	Bookmarks              []Bookmark `json:"bookmarks"`
	DeletedFolderIDs       []int64    `json:"deleted_folders_ids"`
	DeletedBookmarkIDs     []string   `json:"deleted_bookmarks_ids"`
	ServerCurrentTimestamp int64      `json:"server_current_timestamp"`
}

// ErrorResponse is the generic error body for non-2xx API answers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionRequest exchanges an identity-provider token for an API session.
type SessionRequest struct {
	UserID        string `json:"user_id"`
	ProviderToken string `json:"provider_token"`
}

// SessionResponse carries the issued bearer token.
type SessionResponse struct {
	Token string `json:"token"`
}

// Screenshot is the body of GET /api/screenshot.
type Screenshot struct {
	URL         string `json:"url"`
	ImageBase64 string `json:"image_base64"`
	CapturedAt  int64  `json:"captured_at"`
}
