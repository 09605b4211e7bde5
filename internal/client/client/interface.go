// Package client holds the local database bootstrap and the HTTP client the
// sync engine talks to the server with.
package client

import (
	"context"

	"github.com/locallibrarian/librarian/internal/protocol"
)

// Client is the remote-store API used by the sync engine and session manager.
type Client interface {
	// Ping checks server reachability via the health endpoint.
	Ping(ctx context.Context) error

	// Login exchanges identity-provider credentials for a session token.
	Login(ctx context.Context, req *protocol.SessionRequest) (string, error)

	// SetToken installs the bearer token attached to subsequent requests.
	SetToken(token string)

	// Push submits a batch of local changes and returns per-item results.
	Push(ctx context.Context, req *protocol.PushRequest) (*protocol.PushResponse, error)

	// Pull fetches server-side changes newer than the given watermarks
	// (epoch milliseconds, zero meaning everything).
	Pull(ctx context.Context, foldersLastSync, bookmarksLastSync int64) (*protocol.PullResponse, error)

	// CaptureScreenshot asks the server to capture a screenshot of url.
	CaptureScreenshot(ctx context.Context, url string) (*protocol.Screenshot, error)
}
