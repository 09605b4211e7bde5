package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/locallibrarian/librarian/internal/protocol"
	"github.com/locallibrarian/librarian/internal/server/auth"
	"github.com/locallibrarian/librarian/internal/server/metrics"
)

// Push applies a batch of client changes and returns per-item results.
func (h *Handlers) Push(c *gin.Context) {
	var req protocol.PushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, protocol.ErrorResponse{Error: err.Error()})
		return
	}

	resp := h.sync.ProcessPush(c.Request.Context(), auth.UserID(c), &req)
	for _, r := range resp.Results {
		metrics.RecordPushItem(r.Table, r.Status)
	}

	c.JSON(http.StatusOK, resp)
}

// Pull returns records and tombstones changed after the client watermarks.
func (h *Handlers) Pull(c *gin.Context) {
	foldersLast, err := parseWatermark(c.Query("folders_last_sync"))
	if err != nil {
		c.JSON(http.StatusBadRequest, protocol.ErrorResponse{Error: "invalid folders_last_sync"})
		return
	}
	bookmarksLast, err := parseWatermark(c.Query("bookmarks_last_sync"))
	if err != nil {
		c.JSON(http.StatusBadRequest, protocol.ErrorResponse{Error: "invalid bookmarks_last_sync"})
		return
	}

	resp, err := h.sync.ProcessPull(c.Request.Context(), auth.UserID(c), foldersLast, bookmarksLast)
	if err != nil {
		h.log.Error(c.Request.Context(), "pull failed", "error", err)
		c.JSON(http.StatusInternalServerError, protocol.ErrorResponse{Error: "pull failed"})
		return
	}
	metrics.RecordPull()

	c.JSON(http.StatusOK, resp)
}

// parseWatermark reads an epoch-millisecond query value, treating absence as
// zero (pull everything).
func parseWatermark(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}
