package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/locallibrarian/librarian/internal/common"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "userID"

// Middleware validates the bearer token and stores the user id in the
// request context. Requests without a valid token are rejected with 401.
func Middleware(secretKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthHeaderName)
		if header == "" || !strings.HasPrefix(header, common.BearerPrefix) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			c.Abort()
			return
		}

		userID, err := GetUserIDFromToken(strings.TrimPrefix(header, common.BearerPrefix), secretKey)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id stored by Middleware.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
