package billing

import (
	"net/http"

	"subscription-app/internal/domain/subscriptions"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

// ReconcileCheckout is the synchronous fallback for when the dashboard loads
// before the checkout.session.completed event has arrived. It refetches the
// session from Stripe and performs the same projection the webhook would,
// after proving the session belongs to the caller.
func (h *Handler) ReconcileCheckout(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not identified"})
		return
	}

	var body struct {
		SessionID string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing or invalid session_id"})
		return
	}

	// No service-role credential, no write. There is no degraded path here:
	// the target row belongs to the provider-validated claim, not to whatever
	// the row-restricted connection happens to reach.
	if h.projector == nil {
		h.log.Errorw("reconciliation requested without service-role persistence", "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Reconciliation not configured"})
		return
	}

	sess, err := h.provider.CheckoutSession(body.SessionID, "subscription", "customer")
	if err != nil {
		h.log.Errorw("failed to fetch checkout session",
			"user_id", userID,
			"checkout_session_id", body.SessionID,
			"error", err,
		)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to fetch checkout session"})
		return
	}

	// Ownership: session ids leak (success URLs, browser history). Only the
	// user the session was created for may claim it.
	if sess.Metadata[subscriptions.MetadataUserID] != userID {
		h.log.Warnw("checkout session ownership mismatch",
			"user_id", userID,
			"checkout_session_id", sess.ID,
		)
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Checkout session does not belong to this user"})
		return
	}

	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Payment not completed"})
		return
	}

	if sess.Subscription == nil || sess.Subscription.ID == "" {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Checkout session has no subscription"})
		return
	}

	sub := sess.Subscription
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		// Expansion can be shallow depending on API version; refetch.
		sub, err = h.provider.Subscription(sub.ID)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to fetch subscription"})
			return
		}
	}

	// The subscription must bill the same customer the session was opened
	// for, otherwise the response is inconsistent and nothing is written.
	if sess.Customer == nil || sub.Customer == nil || sub.Customer.ID != sess.Customer.ID {
		h.log.Warnw("checkout session customer mismatch",
			"checkout_session_id", sess.ID,
			"stripe_subscription_id", sub.ID,
		)
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Session and subscription disagree on customer"})
		return
	}

	if err := h.projector.Project(sub, userID); err != nil {
		h.log.Errorw("reconciliation projection failed",
			"user_id", userID,
			"stripe_subscription_id", sub.ID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
