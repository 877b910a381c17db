package subscriptions

import (
	"fmt"

	"github.com/stripe/stripe-go/v75"

	stripeinfra "subscription-app/internal/infra/stripe"
)

// Read policies. A deployment runs exactly one; mixing cache-trusting reads
// with provider-authoritative reads produces transient false negatives right
// after checkout.
const (
	PolicyCache    = "cache"
	PolicyProvider = "stripe"
)

// Reader answers "does this user hold a live subscription" under the
// configured policy.
type Reader struct {
	store    Store
	provider stripeinfra.Provider
	policy   string
}

func NewReader(store Store, provider stripeinfra.Provider, policy string) *Reader {
	return &Reader{store: store, provider: provider, policy: policy}
}

// Active returns the live subscription record, if any. Under PolicyProvider
// the record is a snapshot built from the provider response, not the cache
// row.
func (r *Reader) Active(userID string) (bool, *Subscription, error) {
	if r.policy == PolicyCache {
		return r.activeFromCache(userID)
	}
	sub, ok, err := r.ActiveFromProvider(userID)
	if err != nil || !ok {
		return false, nil, err
	}
	rec, found, _ := r.store.ByUserID(userID)
	customerID := sub.Customer.ID
	if customerID == "" && found {
		customerID = rec.StripeCustomerID
	}
	snap := &Subscription{
		UserID:               userID,
		StripeCustomerID:     customerID,
		StripeSubscriptionID: &sub.ID,
		Status:               stripeinfra.NormalizeStatus(string(sub.Status)),
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
		CurrentPeriodStart:   unixTime(sub.CurrentPeriodStart),
		CurrentPeriodEnd:     unixTime(sub.CurrentPeriodEnd),
	}
	if priceID := firstPriceID(sub); priceID != "" {
		snap.StripePriceID = &priceID
	}
	return true, snap, nil
}

func (r *Reader) activeFromCache(userID string) (bool, *Subscription, error) {
	rec, found, err := r.store.ByUserID(userID)
	if err != nil {
		return false, nil, err
	}
	if !found || !stripeinfra.IsActiveStatus(rec.Status) || rec.CancelAtPeriodEnd {
		return false, nil, nil
	}
	return true, rec, nil
}

// ActiveFromProvider lists the customer's subscriptions at Stripe and picks
// the first active or trialing one not scheduled for cancellation. Used
// regardless of read policy wherever the provider object itself is needed.
func (r *Reader) ActiveFromProvider(userID string) (*stripe.Subscription, bool, error) {
	customerID, found, err := r.CustomerID(userID)
	if err != nil || !found {
		return nil, false, err
	}
	subs, err := r.provider.ListSubscriptions(customerID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list subscriptions for customer %s: %w", customerID, err)
	}
	for _, s := range subs {
		if stripeinfra.IsActiveStatus(stripeinfra.NormalizeStatus(string(s.Status))) && !s.CancelAtPeriodEnd {
			return s, true, nil
		}
	}
	return nil, false, nil
}

// CustomerID returns the stored provider customer id for a user.
func (r *Reader) CustomerID(userID string) (string, bool, error) {
	rec, found, err := r.store.ByUserID(userID)
	if err != nil || !found {
		return "", false, err
	}
	if rec.StripeCustomerID == "" {
		return "", false, nil
	}
	return rec.StripeCustomerID, true, nil
}
