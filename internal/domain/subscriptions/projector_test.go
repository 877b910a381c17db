package subscriptions

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75"

	"subscription-app/internal/logger"
)

type memStore struct {
	rows map[string]*Subscription // keyed by user id
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]*Subscription{}}
}

func (m *memStore) ByUserID(userID string) (*Subscription, bool, error) {
	rec, ok := m.rows[userID]
	if !ok {
		return nil, false, nil
	}
	cp := *rec
	return &cp, true, nil
}

func (m *memStore) ByCustomerID(customerID string) (*Subscription, bool, error) {
	for _, rec := range m.rows {
		if rec.StripeCustomerID == customerID {
			cp := *rec
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (m *memStore) BySubscriptionID(subscriptionID string) (*Subscription, bool, error) {
	for _, rec := range m.rows {
		if rec.StripeSubscriptionID != nil && *rec.StripeSubscriptionID == subscriptionID {
			cp := *rec
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (m *memStore) Upsert(rec *Subscription) error {
	cp := *rec
	m.rows[rec.UserID] = &cp
	return nil
}

func (m *memStore) EnsureCustomer(userID, customerID string) error {
	if rec, ok := m.rows[userID]; ok {
		rec.StripeCustomerID = customerID
		return nil
	}
	m.rows[userID] = &Subscription{UserID: userID, StripeCustomerID: customerID, Status: "incomplete"}
	return nil
}

func (m *memStore) SetStatusBySubscriptionID(subscriptionID, status string) (bool, error) {
	for _, rec := range m.rows {
		if rec.StripeSubscriptionID != nil && *rec.StripeSubscriptionID == subscriptionID {
			rec.Status = status
			return true, nil
		}
	}
	return false, nil
}

type fakeProvider struct {
	customerFn          func(id string) (*stripe.Customer, error)
	listSubscriptionsFn func(customerID string) ([]*stripe.Subscription, error)
}

func (f *fakeProvider) Customer(id string) (*stripe.Customer, error) {
	if f.customerFn == nil {
		return nil, errors.New("unexpected Customer call")
	}
	return f.customerFn(id)
}

func (f *fakeProvider) CheckoutSession(id string, expand ...string) (*stripe.CheckoutSession, error) {
	return nil, errors.New("unexpected CheckoutSession call")
}
func (f *fakeProvider) NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return nil, errors.New("unexpected NewCheckoutSession call")
}
func (f *fakeProvider) Subscription(id string, expand ...string) (*stripe.Subscription, error) {
	return nil, errors.New("unexpected Subscription call")
}
func (f *fakeProvider) ListSubscriptions(customerID string) ([]*stripe.Subscription, error) {
	if f.listSubscriptionsFn == nil {
		return nil, errors.New("unexpected ListSubscriptions call")
	}
	return f.listSubscriptionsFn(customerID)
}
func (f *fakeProvider) UpdateSubscription(id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	return nil, errors.New("unexpected UpdateSubscription call")
}
func (f *fakeProvider) NewCustomer(params *stripe.CustomerParams) (*stripe.Customer, error) {
	return nil, errors.New("unexpected NewCustomer call")
}
func (f *fakeProvider) NewBillingPortalSession(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	return nil, errors.New("unexpected NewBillingPortalSession call")
}
func (f *fakeProvider) ListPrices() ([]*stripe.Price, error) {
	return nil, errors.New("unexpected ListPrices call")
}

func providerSub(id, customerID, status, priceID string) *stripe.Subscription {
	return &stripe.Subscription{
		ID:                 id,
		Customer:           &stripe.Customer{ID: customerID},
		Status:             stripe.SubscriptionStatus(status),
		CurrentPeriodStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Unix(),
		CurrentPeriodEnd:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC).Unix(),
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{
				{Price: &stripe.Price{ID: priceID}},
			},
		},
	}
}

func TestProjectWritesMirroredRow(t *testing.T) {
	store := newMemStore()
	p := NewProjector(store, &fakeProvider{}, logger.NewNop())

	sub := providerSub("sub_1", "cus_1", "active", "price_1")
	sub.Metadata = map[string]string{MetadataUserID: "u1"}

	require.NoError(t, p.Project(sub, ""))

	rec, found, err := store.ByUserID("u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "cus_1", rec.StripeCustomerID)
	assert.Equal(t, "sub_1", *rec.StripeSubscriptionID)
	assert.Equal(t, "price_1", *rec.StripePriceID)
	assert.Equal(t, "active", rec.Status)
	assert.False(t, rec.CancelAtPeriodEnd)
	assert.True(t, rec.CurrentPeriodEnd.After(*rec.CurrentPeriodStart))
}

func TestProjectIsIdempotent(t *testing.T) {
	store := newMemStore()
	p := NewProjector(store, &fakeProvider{}, logger.NewNop())

	sub := providerSub("sub_1", "cus_1", "active", "price_1")
	sub.Metadata = map[string]string{MetadataUserID: "u1"}

	require.NoError(t, p.Project(sub, ""))
	first, _, _ := store.ByUserID("u1")

	require.NoError(t, p.Project(sub, ""))
	second, _, _ := store.ByUserID("u1")

	assert.Equal(t, first, second)
	assert.Len(t, store.rows, 1)
}

func TestProjectDropsOrphanedEvent(t *testing.T) {
	store := newMemStore()
	provider := &fakeProvider{
		customerFn: func(id string) (*stripe.Customer, error) {
			return &stripe.Customer{ID: id}, nil // no metadata either
		},
	}
	p := NewProjector(store, provider, logger.NewNop())

	sub := providerSub("sub_1", "cus_unknown", "active", "price_1")

	require.NoError(t, p.Project(sub, ""))
	assert.Empty(t, store.rows)
}

func TestResolveOwnerPriorityOrder(t *testing.T) {
	store := newMemStore()
	store.rows["cache-user"] = &Subscription{UserID: "cache-user", StripeCustomerID: "cus_1"}
	provider := &fakeProvider{
		customerFn: func(id string) (*stripe.Customer, error) {
			return &stripe.Customer{ID: id, Metadata: map[string]string{MetadataUserID: "remote-user"}}, nil
		},
	}
	p := NewProjector(store, provider, logger.NewNop())

	// metadata wins over everything
	sub := providerSub("sub_1", "cus_1", "active", "price_1")
	sub.Metadata = map[string]string{MetadataUserID: "meta-user"}
	owner, ok, err := p.ResolveOwner(sub)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "meta-user", owner)

	// then the cache row for the customer
	sub.Metadata = nil
	owner, ok, err = p.ResolveOwner(sub)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cache-user", owner)

	// then the provider-side customer metadata
	sub = providerSub("sub_2", "cus_2", "active", "price_1")
	owner, ok, err = p.ResolveOwner(sub)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "remote-user", owner)
}

func TestCanceledRowIsNeverReactivated(t *testing.T) {
	store := newMemStore()
	p := NewProjector(store, &fakeProvider{}, logger.NewNop())

	sub := providerSub("sub_1", "cus_1", "active", "price_1")
	sub.Metadata = map[string]string{MetadataUserID: "u1"}
	require.NoError(t, p.Project(sub, ""))
	require.NoError(t, p.Cancel("sub_1"))

	// A late redelivery of the old "active" object must not resurrect the row.
	require.NoError(t, p.Project(sub, ""))
	rec, _, _ := store.ByUserID("u1")
	assert.Equal(t, "canceled", rec.Status)

	// A new checkout means a new subscription id, which may replace it.
	fresh := providerSub("sub_2", "cus_1", "active", "price_1")
	fresh.Metadata = map[string]string{MetadataUserID: "u1"}
	require.NoError(t, p.Project(fresh, ""))
	rec, _, _ = store.ByUserID("u1")
	assert.Equal(t, "active", rec.Status)
	assert.Equal(t, "sub_2", *rec.StripeSubscriptionID)
}

func TestCancelLeavesPeriodUntouched(t *testing.T) {
	store := newMemStore()
	p := NewProjector(store, &fakeProvider{}, logger.NewNop())

	sub := providerSub("sub_1", "cus_1", "active", "price_1")
	sub.Metadata = map[string]string{MetadataUserID: "u1"}
	require.NoError(t, p.Project(sub, ""))
	before, _, _ := store.ByUserID("u1")

	require.NoError(t, p.Cancel("sub_1"))

	after, _, _ := store.ByUserID("u1")
	assert.Equal(t, "canceled", after.Status)
	assert.Equal(t, before.CurrentPeriodEnd, after.CurrentPeriodEnd)
	assert.Equal(t, before.StripePriceID, after.StripePriceID)
}

func TestMarkPastDueOnUnknownSubscriptionIsNoop(t *testing.T) {
	store := newMemStore()
	p := NewProjector(store, &fakeProvider{}, logger.NewNop())

	require.NoError(t, p.MarkPastDue("sub_missing"))
	assert.Empty(t, store.rows)
}
