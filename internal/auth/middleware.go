package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// userKey is where the middleware stores the authenticated user id on the
// gin context.
const userKey = "currentUser"

// Middleware verifies the bearer token and attaches the user id to the
// request context.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing auth token"})
			return
		}

		userID, err := m.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(userKey, userID)
		c.Next()
	}
}

// UserID extracts the authenticated user id set by Middleware.
func UserID(c *gin.Context) string {
	return c.GetString(userKey)
}
