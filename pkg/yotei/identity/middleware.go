package identity

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// ContextKeyUserID is the key for the user's external id in gin context
	ContextKeyUserID = "user_id"
	// ContextKeyDisplayName is the key for the display name in gin context
	ContextKeyDisplayName = "display_name"
)

// AuthMiddleware validates JWT session tokens and sets user info in context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Expect "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := parts[1]
		claims, err := ValidateToken(tokenString)
		if err != nil {
			if err == ErrExpiredToken {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			c.Abort()
			return
		}

		// Set user info in context
		c.Set(ContextKeyUserID, claims.ExternalID)
		c.Set(ContextKeyDisplayName, claims.DisplayName)

		c.Next()
	}
}

// GetUserID returns the user's external id from the gin context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		return "", false
	}
	return userID.(string), true
}

// GetDisplayName returns the display name from the gin context
func GetDisplayName(c *gin.Context) (string, bool) {
	name, exists := c.Get(ContextKeyDisplayName)
	if !exists {
		return "", false
	}
	return name.(string), true
}
