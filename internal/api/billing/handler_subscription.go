package billing

import (
	"net/http"

	stripeinfra "subscription-app/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

// GetSubscriptionStatus is GET /billing/subscription.
func (h *Handler) GetSubscriptionStatus(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	subscribed, rec, err := h.reader.Active(userID)
	if err != nil {
		h.log.Errorw("failed to read subscription status", "user_id", userID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to read subscription status"})
		return
	}

	if !subscribed {
		c.JSON(http.StatusOK, gin.H{"subscribed": false, "subscription": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribed": true, "subscription": rec})
}

// CancelSubscription schedules termination at period end rather than cutting
// access immediately.
func (h *Handler) CancelSubscription(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not identified"})
		return
	}

	sub, found, err := h.reader.ActiveFromProvider(userID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to look up subscription"})
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "No active subscription found"})
		return
	}

	if _, err := h.provider.UpdateSubscription(sub.ID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}); err != nil {
		h.log.Errorw("failed to cancel subscription", "user_id", userID, "stripe_subscription_id", sub.ID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to cancel subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ResumeSubscription clears a pending cancellation before the period ends.
func (h *Handler) ResumeSubscription(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not identified"})
		return
	}

	customerID, found, err := h.reader.CustomerID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load billing profile"})
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "No subscription found"})
		return
	}

	subs, err := h.provider.ListSubscriptions(customerID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to look up subscriptions"})
		return
	}

	var canceling *stripe.Subscription
	for _, s := range subs {
		if s.CancelAtPeriodEnd && stripeinfra.IsActiveStatus(stripeinfra.NormalizeStatus(string(s.Status))) {
			canceling = s
			break
		}
	}
	if canceling == nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "No subscription scheduled for cancellation found"})
		return
	}

	if _, err := h.provider.UpdateSubscription(canceling.ID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(false),
	}); err != nil {
		h.log.Errorw("failed to resume subscription", "user_id", userID, "stripe_subscription_id", canceling.ID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to resume subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
