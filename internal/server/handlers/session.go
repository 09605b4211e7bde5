package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/locallibrarian/librarian/internal/common"
	"github.com/locallibrarian/librarian/internal/protocol"
	"github.com/locallibrarian/librarian/internal/server/metrics"
)

// CreateSession exchanges an identity-provider token for a session token.
func (h *Handlers) CreateSession(c *gin.Context) {
	var req protocol.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, protocol.ErrorResponse{Error: err.Error()})
		return
	}

	token, err := h.sessions.IssueSession(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			c.JSON(http.StatusBadRequest, protocol.ErrorResponse{Error: err.Error()})
			return
		}
		h.log.Error(c.Request.Context(), "session issue failed", "error", err)
		c.JSON(http.StatusInternalServerError, protocol.ErrorResponse{Error: "session issue failed"})
		return
	}
	metrics.RecordTokenIssued()

	c.JSON(http.StatusOK, protocol.SessionResponse{Token: token})
}

// Health reports service liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
