package cli

import (
	"context"
	"fmt"
	"os"
)

func (a *App) listFolders(ctx context.Context) {
	if !a.requireLogin() {
		return
	}

	fs, err := a.folders.GetFoldersForUser(ctx, a.userID)
	if err != nil {
		fmt.Println("Failed to list folders:", err)
		return
	}
	if len(fs) == 0 {
		fmt.Println("No folders yet, create one with 'mkdir'")
		return
	}

	for _, f := range fs {
		fmt.Printf("%s  %s %s [%s]\n", f.FolderID, f.Emoji, f.Name, f.SyncStatus)
	}
}

func (a *App) addFolder(ctx context.Context) {
	if !a.requireLogin() {
		return
	}

	name, err := GetSimpleText(a.reader, "Folder name", os.Stdout)
	if err != nil {
		fmt.Println("Failed to read name:", err)
		return
	}
	emoji, err := GetSimpleText(a.reader, "Emoji (empty for default)", os.Stdout)
	if err != nil {
		fmt.Println("Failed to read emoji:", err)
		return
	}

	f, err := a.folders.AddNewFolder(ctx, a.userID, name, emoji)
	if err != nil {
		fmt.Println("Failed to create folder:", err)
		return
	}
	fmt.Printf("Created folder %s %s (%s)\n", f.Emoji, f.Name, f.FolderID)
}

func (a *App) editFolder(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) == 0 {
		fmt.Println("Usage: mv <folder-id>")
		return
	}

	name, err := GetSimpleText(a.reader, "New name", os.Stdout)
	if err != nil {
		fmt.Println("Failed to read name:", err)
		return
	}
	emoji, err := GetSimpleText(a.reader, "New emoji (empty to keep)", os.Stdout)
	if err != nil {
		fmt.Println("Failed to read emoji:", err)
		return
	}

	f, err := a.folders.UpdateFolder(ctx, args[0], name, emoji)
	if err != nil {
		fmt.Println("Failed to update folder:", err)
		return
	}
	fmt.Printf("Updated folder %s %s\n", f.Emoji, f.Name)
}

func (a *App) removeFolder(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) == 0 {
		fmt.Println("Usage: rmdir <folder-id>")
		return
	}

	if err := a.folders.DeleteFolder(ctx, args[0]); err != nil {
		fmt.Println("Failed to delete folder:", err)
		return
	}
	fmt.Println("Folder deleted (will propagate on next sync)")
}
