package server

import (
	"net/http"
	"time"

	"subscription-app/internal/logger"

	"github.com/gin-gonic/gin"
)

// Handler fronts the subscription-gated server endpoints. The subscription
// check itself lives in the route middleware; by the time a request lands
// here the caller has already proven an active subscription.
type Handler struct {
	log *logger.Logger
}

func NewHandler(log *logger.Logger) *Handler {
	return &Handler{log: log}
}

// Call is POST /api/server/:endpoint. Placeholder body: a deployment points
// this at its actual upstream.
func (h *Handler) Call(c *gin.Context) {
	userID := c.GetString("user_id")
	endpoint := c.Param("endpoint")

	h.log.Infow("gated server call", "user_id", userID, "endpoint", endpoint)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"endpoint":  endpoint,
		"message":   "Server call to " + endpoint + " successful",
		"user_id":   userID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
