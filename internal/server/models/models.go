// Package models defines the server-side records kept in PostgreSQL.
package models

// Folder is a bookmark folder row. ID is the auto-increment server key; the
// client-generated uuid is kept alongside so push results and pulls can be
// correlated on both sides.
type Folder struct {
	ID             int64
	ClientFolderID string
	UserID         string
	Name           string
	Emoji          string
	CreatedAt      int64
	UpdatedAt      int64
	IsDeleted      bool
}

// Bookmark is a bookmark row, keyed by the client-generated uuid. FolderID
// holds the owning folder's client uuid.
type Bookmark struct {
	ID        string
	UserID    string
	FolderID  string
	URL       string
	Title     string
	CreatedAt int64
	UpdatedAt int64
	IsDeleted bool
}
