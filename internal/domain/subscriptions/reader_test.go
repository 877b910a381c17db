package subscriptions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75"
)

func TestCachePolicyTrustsLocalRow(t *testing.T) {
	store := newMemStore()
	subID := "sub_1"
	priceID := "price_1"
	store.rows["u1"] = &Subscription{
		UserID:               "u1",
		StripeCustomerID:     "cus_1",
		StripeSubscriptionID: &subID,
		StripePriceID:        &priceID,
		Status:               "active",
	}
	r := NewReader(store, &fakeProvider{}, PolicyCache)

	subscribed, rec, err := r.Active("u1")
	require.NoError(t, err)
	assert.True(t, subscribed)
	assert.Equal(t, "u1", rec.UserID)

	// no row at all
	subscribed, rec, err = r.Active("u2")
	require.NoError(t, err)
	assert.False(t, subscribed)
	assert.Nil(t, rec)
}

func TestCachePolicyPendingCancellationIsNotSubscribed(t *testing.T) {
	store := newMemStore()
	subID := "sub_1"
	store.rows["u1"] = &Subscription{
		UserID:               "u1",
		StripeCustomerID:     "cus_1",
		StripeSubscriptionID: &subID,
		Status:               "active",
		CancelAtPeriodEnd:    true,
	}
	r := NewReader(store, &fakeProvider{}, PolicyCache)

	subscribed, _, err := r.Active("u1")
	require.NoError(t, err)
	assert.False(t, subscribed)
}

func TestProviderPolicySelectsLiveSubscription(t *testing.T) {
	store := newMemStore()
	store.rows["u1"] = &Subscription{UserID: "u1", StripeCustomerID: "cus_1", Status: "incomplete"}

	provider := &fakeProvider{
		listSubscriptionsFn: func(customerID string) ([]*stripe.Subscription, error) {
			require.Equal(t, "cus_1", customerID)
			return []*stripe.Subscription{
				providerSubStatus("sub_old", "cus_1", "canceled", false),
				providerSubStatus("sub_closing", "cus_1", "active", true),
				providerSubStatus("sub_live", "cus_1", "active", false),
			}, nil
		},
	}
	r := NewReader(store, provider, PolicyProvider)

	subscribed, rec, err := r.Active("u1")
	require.NoError(t, err)
	require.True(t, subscribed)
	assert.Equal(t, "sub_live", *rec.StripeSubscriptionID)
	assert.Equal(t, "active", rec.Status)

	// no customer id stored: never hits the provider
	subscribed, rec, err = r.Active("u2")
	require.NoError(t, err)
	assert.False(t, subscribed)
	assert.Nil(t, rec)
}

func providerSubStatus(id, customerID, status string, canceling bool) *stripe.Subscription {
	s := providerSub(id, customerID, status, "price_1")
	s.CancelAtPeriodEnd = canceling
	return s
}
