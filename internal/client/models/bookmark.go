package models

// Bookmark is a stored bookmark. BookmarkID is a client-generated uuid that
// doubles as the remote primary key, so bookmarks never carry a separate
// server id. FolderID references Folder.FolderID of the owning folder.
type Bookmark struct {
	BookmarkID string
	UserID     string
	FolderID   string
	URL        string
	Title      string
	CreatedAt  int64
	UpdatedAt  int64
	SyncStatus SyncStatus
	IsDeleted  bool
}
