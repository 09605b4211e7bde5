package cli

import (
	"context"
	"fmt"
	"os"
)

func (a *App) listBookmarks(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) == 0 {
		fmt.Println("Usage: open <folder-id>")
		return
	}

	bs, err := a.bookmarks.GetBookmarksForFolder(ctx, args[0], a.userID)
	if err != nil {
		fmt.Println("Failed to list bookmarks:", err)
		return
	}
	if len(bs) == 0 {
		fmt.Println("Folder is empty, add a bookmark with 'add'")
		return
	}

	for _, b := range bs {
		fmt.Printf("%s  %s (%s) [%s]\n", b.BookmarkID, b.Title, b.URL, b.SyncStatus)
	}
}

func (a *App) addBookmark(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) == 0 {
		fmt.Println("Usage: add <folder-id>")
		return
	}

	url, err := GetSimpleText(a.reader, "URL", os.Stdout)
	if err != nil {
		fmt.Println("Failed to read url:", err)
		return
	}
	title, err := GetSimpleText(a.reader, "Title (empty to use URL)", os.Stdout)
	if err != nil {
		fmt.Println("Failed to read title:", err)
		return
	}

	b, err := a.bookmarks.AddBookmarkToFolder(ctx, a.userID, args[0], url, title)
	if err != nil {
		fmt.Println("Failed to add bookmark:", err)
		return
	}
	fmt.Printf("Added %s (%s)\n", b.Title, b.BookmarkID)
}

func (a *App) editBookmark(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) == 0 {
		fmt.Println("Usage: edit <bookmark-id>")
		return
	}

	url, err := GetSimpleText(a.reader, "New URL (empty to keep)", os.Stdout)
	if err != nil {
		fmt.Println("Failed to read url:", err)
		return
	}
	title, err := GetSimpleText(a.reader, "New title (empty to keep)", os.Stdout)
	if err != nil {
		fmt.Println("Failed to read title:", err)
		return
	}

	b, err := a.bookmarks.UpdateBookmark(ctx, args[0], url, title)
	if err != nil {
		fmt.Println("Failed to update bookmark:", err)
		return
	}
	fmt.Printf("Updated %s\n", b.Title)
}

func (a *App) removeBookmark(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) == 0 {
		fmt.Println("Usage: rm <bookmark-id>")
		return
	}

	if err := a.bookmarks.DeleteBookmark(ctx, args[0]); err != nil {
		fmt.Println("Failed to delete bookmark:", err)
		return
	}
	fmt.Println("Bookmark deleted (will propagate on next sync)")
}
