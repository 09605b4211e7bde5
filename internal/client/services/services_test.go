package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/locallibrarian/librarian/internal/client/client"
	"github.com/locallibrarian/librarian/internal/logging"
	"github.com/locallibrarian/librarian/internal/protocol"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// setupRepos opens a migrated file-backed store in a temp dir. A file dsn is
// used because every pooled connection to a plain :memory: dsn gets its own
// empty database.
func setupRepos(t *testing.T) *client.Repositories {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	repos, err := client.InitDatabase(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return repos
}

// fakeClient implements client.Client with pluggable handlers. Nil handlers
// succeed with empty responses.
type fakeClient struct {
	token string

	pingErr  error
	loginFn  func(req *protocol.SessionRequest) (string, error)
	pushFn   func(req *protocol.PushRequest) (*protocol.PushResponse, error)
	pullFn   func(foldersLast, bookmarksLast int64) (*protocol.PullResponse, error)
	shotFn   func(url string) (*protocol.Screenshot, error)
	pushed   []*protocol.PushRequest
	pulls    int
	captures int
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeClient) Login(ctx context.Context, req *protocol.SessionRequest) (string, error) {
	if f.loginFn != nil {
		return f.loginFn(req)
	}
	return "test-token", nil
}

func (f *fakeClient) SetToken(token string) { f.token = token }

func (f *fakeClient) Push(ctx context.Context, req *protocol.PushRequest) (*protocol.PushResponse, error) {
	f.pushed = append(f.pushed, req)
	if f.pushFn != nil {
		return f.pushFn(req)
	}
	return &protocol.PushResponse{Success: true}, nil
}

func (f *fakeClient) Pull(ctx context.Context, foldersLast, bookmarksLast int64) (*protocol.PullResponse, error) {
	f.pulls++
	if f.pullFn != nil {
		return f.pullFn(foldersLast, bookmarksLast)
	}
	return &protocol.PullResponse{ServerCurrentTimestamp: 1}, nil
}

func (f *fakeClient) CaptureScreenshot(ctx context.Context, url string) (*protocol.Screenshot, error) {
	f.captures++
	if f.shotFn != nil {
		return f.shotFn(url)
	}
	return &protocol.Screenshot{URL: url, ImageBase64: "aW1n", CapturedAt: 1}, nil
}

var _ client.Client = (*fakeClient)(nil)
