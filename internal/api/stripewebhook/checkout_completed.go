package stripewebhooks

import (
	"encoding/json"
	"fmt"

	"subscription-app/internal/domain/subscriptions"

	"github.com/stripe/stripe-go/v75"
)

func (h *Handler) handleCheckoutSessionCompleted(event *stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("failed to parse checkout session: %w", err)
	}

	// One-off payment sessions carry no subscription to mirror.
	if session.Mode != stripe.CheckoutSessionModeSubscription ||
		session.Subscription == nil || session.Subscription.ID == "" {
		return nil
	}

	// The event payload holds a bare reference; fetch the full subscription.
	sub, err := h.provider.Subscription(session.Subscription.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch subscription %s: %w", session.Subscription.ID, err)
	}

	owner := session.Metadata[subscriptions.MetadataUserID]
	if owner == "" {
		h.log.Warnw("checkout session missing user metadata, falling back to resolution",
			"checkout_session_id", session.ID,
		)
	}
	return h.projector.Project(sub, owner)
}
