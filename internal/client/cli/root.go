package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	s := ""
	if a.userID != "" {
		s = a.userID + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to Librarian CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	a.restoreSession(ctx)

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	for {
		fmt.Printf("lib %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: (l)ist, mkdir, mv, rmdir, open, add, edit, rm, sync, shot, logout, exit")
			} else {
				fmt.Println("Available commands: login, exit")
			}

		case "login":
			a.login(ctx)
		case "logout":
			a.logout(ctx)
		case "l", "list":
			a.listFolders(ctx)
		case "mkdir":
			a.addFolder(ctx)
		case "mv":
			a.editFolder(ctx, args)
		case "rmdir":
			a.removeFolder(ctx, args)
		case "open":
			a.listBookmarks(ctx, args)
		case "add":
			a.addBookmark(ctx, args)
		case "edit":
			a.editBookmark(ctx, args)
		case "rm":
			a.removeBookmark(ctx, args)
		case "sync":
			a.syncNow(ctx)
		case "shot":
			a.screenshot(ctx, args)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}

func (a *App) restoreSession(ctx context.Context) {
	userID, ok, err := a.session.Restore(ctx)
	if err != nil {
		log.Printf("failed to restore session: %s", err.Error())
		return
	}
	if ok {
		a.userID = userID
		fmt.Printf("Welcome back, %s\n", userID)
	}
}

// requireLogin reports whether a user is signed in, complaining otherwise.
func (a *App) requireLogin() bool {
	if !a.isLoggedIn() {
		fmt.Println("Please login first")
		return false
	}
	return true
}
