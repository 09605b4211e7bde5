// Package handlers wires the HTTP API of the sync server.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/locallibrarian/librarian/internal/logging"
	"github.com/locallibrarian/librarian/internal/protocol"
	"github.com/locallibrarian/librarian/internal/server/auth"
	"github.com/locallibrarian/librarian/internal/server/metrics"
)

// SyncProcessor is the sync surface the handlers call into.
type SyncProcessor interface {
	ProcessPush(ctx context.Context, userID string, req *protocol.PushRequest) *protocol.PushResponse
	ProcessPull(ctx context.Context, userID string, foldersLast, bookmarksLast int64) (*protocol.PullResponse, error)
}

// SessionIssuer exchanges provider credentials for session tokens.
type SessionIssuer interface {
	IssueSession(ctx context.Context, req *protocol.SessionRequest) (string, error)
}

// ScreenshotCapturer captures page screenshots.
type ScreenshotCapturer interface {
	Capture(ctx context.Context, url string) (*protocol.Screenshot, error)
}

// Handlers bundles the API handlers and their dependencies.
type Handlers struct {
	sync        SyncProcessor
	sessions    SessionIssuer
	screenshots ScreenshotCapturer
	log         logging.Logger
}

// New returns Handlers over the given services.
func New(sync SyncProcessor, sessions SessionIssuer, screenshots ScreenshotCapturer, log logging.Logger) *Handlers {
	return &Handlers{sync: sync, sessions: sessions, screenshots: screenshots, log: log}
}

// Router builds the gin engine with all routes and middleware attached.
func (h *Handlers) Router(secretKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), metrics.Middleware())

	r.GET("/api/health", h.Health)
	r.GET("/metrics", metrics.Handler())
	r.POST("/api/session", h.CreateSession)

	api := r.Group("/api", auth.Middleware(secretKey))
	{
		api.POST("/sync/push", h.Push)
		api.GET("/sync/pull", h.Pull)
		api.GET("/screenshot", h.Screenshot)
	}

	return r
}
