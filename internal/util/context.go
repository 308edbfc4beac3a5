// Package util holds small gin helpers shared by the handlers.
package util

import (
	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key set by the auth middleware
const UserIDKey = "user_id"

// GetUserIDFromContext extracts the user ID from the Gin context.
// If the user is not authenticated, it responds with 401 and returns false.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		RespondUnauthorized(c)
		return "", false
	}
	userIDStr, ok := userID.(string)
	if !ok || userIDStr == "" {
		RespondUnauthorized(c, "invalid user ID in context")
		return "", false
	}
	return userIDStr, true
}
