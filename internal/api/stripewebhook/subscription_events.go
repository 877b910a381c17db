package stripewebhooks

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v75"
)

func (h *Handler) handleSubscriptionChanged(event *stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}
	return h.projector.Project(&sub, "")
}

func (h *Handler) handleSubscriptionDeleted(event *stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}
	if sub.ID == "" {
		return nil
	}
	return h.projector.Cancel(sub.ID)
}
