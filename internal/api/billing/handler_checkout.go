package billing

import (
	"net/http"

	"subscription-app/config"
	"subscription-app/internal/domain/subscriptions"
	"subscription-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var body struct {
		PriceID string `json:"price_id"`
	}
	_ = c.ShouldBindJSON(&body)
	priceID := body.PriceID
	if priceID == "" {
		priceID = config.STRIPE_PRICE_ID
	}
	if priceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing price_id"})
		return
	}

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	var user users.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	customerID, err := h.ensureCustomer(&user)
	if err != nil {
		h.log.Errorw("failed to ensure Stripe customer", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Stripe customer"})
		return
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(config.APP_URL + "/dashboard?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(config.APP_URL + "/dashboard"),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:   stripe.String(customerID),

		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},

		ClientReferenceID: stripe.String(user.ID),

		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				subscriptions.MetadataUserID: user.ID,
			},
		},
	}
	// The session-level tag is what the webhook and the reconciler check
	// ownership against.
	params.AddMetadata(subscriptions.MetadataUserID, user.ID)

	s, err := h.provider.NewCheckoutSession(params)
	if err != nil {
		h.log.Errorw("failed to create checkout session", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": s.URL})
}

// ensureCustomer returns the user's Stripe customer id, creating the customer
// and the bare cache stub on first use.
func (h *Handler) ensureCustomer(user *users.User) (string, error) {
	if customerID, found, err := h.reader.CustomerID(user.ID); err != nil {
		return "", err
	} else if found {
		return customerID, nil
	}

	cus, err := h.provider.NewCustomer(&stripe.CustomerParams{
		Email: stripe.String(user.Email),
		Metadata: map[string]string{
			subscriptions.MetadataUserID: user.ID,
		},
	})
	if err != nil {
		return "", err
	}

	if err := h.store.EnsureCustomer(user.ID, cus.ID); err != nil {
		return "", err
	}
	return cus.ID, nil
}

func (h *Handler) CreateBillingPortal(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	customerID, found, err := h.reader.CustomerID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load billing profile"})
		return
	}
	if !found {
		c.JSON(http.StatusConflict, gin.H{"error": "No Stripe customer yet (subscribe first)"})
		return
	}

	portal, err := h.provider.NewBillingPortalSession(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(config.APP_URL + "/dashboard"),
	})
	if err != nil {
		h.log.Errorw("failed to create billing portal session", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create billing portal session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": portal.URL})
}
