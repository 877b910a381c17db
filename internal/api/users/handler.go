package users

import (
	"net/http"

	"subscription-app/internal/domain/subscriptions"
	"subscription-app/internal/domain/users"
	"subscription-app/internal/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	db    *gorm.DB
	store subscriptions.Store
	log   *logger.Logger
}

func NewHandler(db *gorm.DB, store subscriptions.Store, log *logger.Logger) *Handler {
	return &Handler{db: db, store: store, log: log}
}

func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	rec, found, err := h.store.ByUserID(userID)
	if err != nil {
		h.log.Errorw("failed to load subscription record", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	resp := gin.H{
		"user": gin.H{
			"id":            user.ID,
			"email":         user.Email,
			"auth_provider": user.AuthProvider,
			"is_verified":   user.IsVerified,
		},
		"subscription": nil,
	}
	if found {
		resp["subscription"] = rec
	}

	c.JSON(http.StatusOK, resp)
}
