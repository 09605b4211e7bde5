package models

import "database/sql"

// Folder is a bookmark folder as stored locally.
//
// FolderID is a client-generated uuid, permanent and never reassigned.
// ServerID is the remote auto-increment key; it stays NULL until the first
// successful create-push and is assigned at most once.
type Folder struct {
	FolderID   string
	ServerID   sql.NullInt64
	UserID     string
	Name       string
	Emoji      string
	CreatedAt  int64
	UpdatedAt  int64
	SyncStatus SyncStatus
	IsDeleted  bool
}
