package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/locallibrarian/librarian/internal/common"
)

func (a *App) syncNow(ctx context.Context) {
	if !a.requireLogin() {
		return
	}

	result, err := a.sync.Sync(ctx)
	if err != nil {
		if errors.Is(err, common.ErrSyncInProgress) {
			fmt.Println("Sync already running")
			return
		}
		fmt.Println("Sync failed:", err)
		return
	}

	if result.Offline {
		fmt.Println("Server unreachable, changes stay queued locally")
		return
	}
	fmt.Printf("Synced: pushed %d, pulled %d, deletes %d, rejected %d\n",
		result.Pushed, result.Pulled, result.PulledDeletes, result.PushErrors)
}

func (a *App) screenshot(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) == 0 {
		fmt.Println("Usage: shot <url>")
		return
	}

	entry, err := a.screenshots.GetScreenshot(ctx, args[0])
	if err != nil {
		fmt.Println("Failed to fetch screenshot:", err)
		return
	}
	fmt.Printf("Screenshot cached for %s (%d bytes base64)\n", entry.URL, len(entry.ImageBase64))
}
