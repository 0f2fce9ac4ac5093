package middleware

import (
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// userIDKey holds the internal account ID of the authenticated caller.
const userIDKey = contextKey("userID")

// identityKey holds the verified token identity before it is resolved to an account.
const identityKey = contextKey("identity")

// GetUserIDFromContext retrieves the authenticated account ID from the Gin context.
// It returns the ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		// check in the request context as well
		if userID, ok := c.Request.Context().Value(userIDKey).(string); ok && userID != "" {
			return userID, true
		}
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetIdentityFromContext retrieves the verified token identity.
func GetIdentityFromContext(c *gin.Context) (domain.Identity, bool) {
	val, exists := c.Get(string(identityKey))
	if !exists {
		return domain.Identity{}, false
	}
	identity, ok := val.(domain.Identity)
	return identity, ok
}
