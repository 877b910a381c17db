package middleware

import (
	"net/http"

	"subscription-app/internal/domain/subscriptions"

	"github.com/gin-gonic/gin"
)

// RequireActiveSubscription gates a route group on a live subscription under
// the deployment's read policy.
func RequireActiveSubscription(reader *subscriptions.Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
			return
		}

		subscribed, _, err := reader.Active(userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Failed to verify subscription"})
			return
		}
		if !subscribed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Active subscription required"})
			return
		}

		c.Next()
	}
}
