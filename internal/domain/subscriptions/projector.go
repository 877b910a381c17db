package subscriptions

import (
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v75"

	stripeinfra "subscription-app/internal/infra/stripe"
	"subscription-app/internal/logger"
)

// MetadataUserID is the metadata key carrying the local account id on
// checkout sessions, subscriptions and customers.
const MetadataUserID = "user_id"

// Projector converges the local cache row with a provider-side subscription
// object. Every write goes through the upsert keyed by user id, which is what
// makes redelivered events safe.
type Projector struct {
	store    Store
	provider stripeinfra.Provider
	log      *logger.Logger
}

func NewProjector(store Store, provider stripeinfra.Provider, log *logger.Logger) *Projector {
	return &Projector{store: store, provider: provider, log: log}
}

// Project mirrors sub into the owner's cache row. An empty ownerUserID makes
// the projector resolve the owner itself; an unresolvable owner is an
// expected outcome (late or orphaned event) and drops the event without
// error.
func (p *Projector) Project(sub *stripe.Subscription, ownerUserID string) error {
	if sub == nil || sub.ID == "" {
		return fmt.Errorf("subscription object missing id")
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		return fmt.Errorf("subscription %s missing customer", sub.ID)
	}

	if ownerUserID == "" {
		owner, ok, err := p.ResolveOwner(sub)
		if err != nil {
			return err
		}
		if !ok {
			p.log.Infow("dropping subscription event with no resolvable owner",
				"stripe_subscription_id", sub.ID,
				"stripe_customer_id", sub.Customer.ID,
			)
			return nil
		}
		ownerUserID = owner
	}

	status := stripeinfra.NormalizeStatus(string(sub.Status))

	// A canceled row never moves back to active on its own; reactivation
	// arrives as a new checkout with a fresh subscription id.
	existing, found, err := p.store.ByUserID(ownerUserID)
	if err != nil {
		return err
	}
	if found && existing.Status == stripeinfra.StatusCanceled &&
		existing.StripeSubscriptionID != nil && *existing.StripeSubscriptionID == sub.ID &&
		stripeinfra.IsActiveStatus(status) {
		p.log.Warnw("ignoring reactivation of a canceled subscription",
			"user_id", ownerUserID,
			"stripe_subscription_id", sub.ID,
		)
		return nil
	}

	rec := &Subscription{
		UserID:               ownerUserID,
		StripeCustomerID:     sub.Customer.ID,
		StripeSubscriptionID: &sub.ID,
		Status:               status,
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
		CurrentPeriodStart:   unixTime(sub.CurrentPeriodStart),
		CurrentPeriodEnd:     unixTime(sub.CurrentPeriodEnd),
	}
	if priceID := firstPriceID(sub); priceID != "" {
		rec.StripePriceID = &priceID
	}

	if err := p.store.Upsert(rec); err != nil {
		return fmt.Errorf("failed to upsert subscription for user %s: %w", ownerUserID, err)
	}
	return nil
}

// Cancel marks the row of a subscription id canceled, leaving the period
// bounds as they were. Unknown ids are a no-op.
func (p *Projector) Cancel(subscriptionID string) error {
	found, err := p.store.SetStatusBySubscriptionID(subscriptionID, stripeinfra.StatusCanceled)
	if err != nil {
		return err
	}
	if !found {
		p.log.Infow("cancel for unknown subscription", "stripe_subscription_id", subscriptionID)
	}
	return nil
}

// MarkPastDue flags a payment failure on the row of a subscription id without
// touching price or period fields. Unknown ids are a no-op.
func (p *Projector) MarkPastDue(subscriptionID string) error {
	found, err := p.store.SetStatusBySubscriptionID(subscriptionID, stripeinfra.StatusPastDue)
	if err != nil {
		return err
	}
	if !found {
		p.log.Infow("payment failure for unknown subscription", "stripe_subscription_id", subscriptionID)
	}
	return nil
}

type ownerStrategy func(sub *stripe.Subscription) (string, bool, error)

// ResolveOwner walks the resolution strategies in priority order: metadata
// tag on the object, then the cache row holding this customer id, then the
// provider-side customer metadata.
func (p *Projector) ResolveOwner(sub *stripe.Subscription) (string, bool, error) {
	strategies := []ownerStrategy{
		p.ownerFromMetadata,
		p.ownerFromCache,
		p.ownerFromCustomer,
	}
	for _, resolve := range strategies {
		owner, ok, err := resolve(sub)
		if err != nil {
			return "", false, err
		}
		if ok {
			return owner, true, nil
		}
	}
	return "", false, nil
}

func (p *Projector) ownerFromMetadata(sub *stripe.Subscription) (string, bool, error) {
	if id := sub.Metadata[MetadataUserID]; id != "" {
		return id, true, nil
	}
	return "", false, nil
}

func (p *Projector) ownerFromCache(sub *stripe.Subscription) (string, bool, error) {
	rec, found, err := p.store.ByCustomerID(sub.Customer.ID)
	if err != nil || !found {
		return "", false, err
	}
	return rec.UserID, true, nil
}

func (p *Projector) ownerFromCustomer(sub *stripe.Subscription) (string, bool, error) {
	cus, err := p.provider.Customer(sub.Customer.ID)
	if err != nil {
		return "", false, fmt.Errorf("failed to fetch customer %s: %w", sub.Customer.ID, err)
	}
	if cus.Deleted {
		return "", false, nil
	}
	if id := cus.Metadata[MetadataUserID]; id != "" {
		return id, true, nil
	}
	return "", false, nil
}

func firstPriceID(sub *stripe.Subscription) string {
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return ""
	}
	return sub.Items.Data[0].Price.ID
}

func unixTime(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0)
	return &t
}
