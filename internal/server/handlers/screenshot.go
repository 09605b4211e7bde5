package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/locallibrarian/librarian/internal/common"
	"github.com/locallibrarian/librarian/internal/protocol"
	"github.com/locallibrarian/librarian/internal/server/services"
)

// Screenshot captures a screenshot of the page given in the url query param.
func (h *Handlers) Screenshot(c *gin.Context) {
	pageURL := c.Query("url")
	if pageURL == "" {
		c.JSON(http.StatusBadRequest, protocol.ErrorResponse{Error: "url query parameter is required"})
		return
	}

	shot, err := h.screenshots.Capture(c.Request.Context(), pageURL)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrValidation):
			c.JSON(http.StatusBadRequest, protocol.ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrScreenshotsDisabled):
			c.JSON(http.StatusNotImplemented, protocol.ErrorResponse{Error: err.Error()})
		default:
			h.log.Error(c.Request.Context(), "screenshot capture failed", "url", pageURL, "error", err)
			c.JSON(http.StatusBadGateway, protocol.ErrorResponse{Error: "capture failed"})
		}
		return
	}

	c.JSON(http.StatusOK, shot)
}
