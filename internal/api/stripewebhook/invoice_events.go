package stripewebhooks

import (
	"encoding/json"
	"fmt"

	"subscription-app/internal/domain/billing"

	"github.com/stripe/stripe-go/v75"
)

func (h *Handler) handleInvoicePaymentSucceeded(event *stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to parse invoice: %w", err)
	}
	if invoice.Subscription == nil || invoice.Subscription.ID == "" {
		return nil
	}

	// A settled invoice means a renewal (or recovery); re-mirror the whole
	// subscription rather than patching fields.
	sub, err := h.provider.Subscription(invoice.Subscription.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch subscription %s: %w", invoice.Subscription.ID, err)
	}
	if err := h.projector.Project(sub, ""); err != nil {
		return err
	}

	owner, ok, err := h.projector.ResolveOwner(sub)
	if err != nil || !ok {
		return err
	}
	return h.recordPayment(&invoice, owner)
}

func (h *Handler) handleInvoicePaymentFailed(event *stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to parse invoice: %w", err)
	}
	if invoice.Subscription == nil || invoice.Subscription.ID == "" {
		return nil
	}
	return h.projector.MarkPastDue(invoice.Subscription.ID)
}

func (h *Handler) recordPayment(invoice *stripe.Invoice, userID string) error {
	p := &billing.Payment{
		UserID:          userID,
		StripeInvoiceID: invoice.ID,
		Amount:          float64(invoice.AmountPaid) / 100.0,
		Currency:        string(invoice.Currency),
		Status:          string(invoice.Status),
	}
	if invoice.Subscription != nil && invoice.Subscription.ID != "" {
		p.StripeSubscriptionID = &invoice.Subscription.ID
	}
	if invoice.HostedInvoiceURL != "" {
		url := invoice.HostedInvoiceURL
		p.HostedInvoiceURL = &url
	}
	if err := h.payments.Record(p); err != nil {
		return fmt.Errorf("failed to record payment for invoice %s: %w", invoice.ID, err)
	}
	return nil
}
