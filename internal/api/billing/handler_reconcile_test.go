package billing

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75"

	"subscription-app/internal/domain/subscriptions"
	"subscription-app/internal/logger"
)

type memStore struct {
	rows map[string]*subscriptions.Subscription
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]*subscriptions.Subscription{}}
}

func (m *memStore) ByUserID(userID string) (*subscriptions.Subscription, bool, error) {
	rec, ok := m.rows[userID]
	if !ok {
		return nil, false, nil
	}
	cp := *rec
	return &cp, true, nil
}

func (m *memStore) ByCustomerID(customerID string) (*subscriptions.Subscription, bool, error) {
	for _, rec := range m.rows {
		if rec.StripeCustomerID == customerID {
			cp := *rec
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (m *memStore) BySubscriptionID(subscriptionID string) (*subscriptions.Subscription, bool, error) {
	for _, rec := range m.rows {
		if rec.StripeSubscriptionID != nil && *rec.StripeSubscriptionID == subscriptionID {
			cp := *rec
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (m *memStore) Upsert(rec *subscriptions.Subscription) error {
	cp := *rec
	m.rows[rec.UserID] = &cp
	return nil
}

func (m *memStore) EnsureCustomer(userID, customerID string) error {
	m.rows[userID] = &subscriptions.Subscription{UserID: userID, StripeCustomerID: customerID, Status: "incomplete"}
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
	checkoutSessionFn func(id string) (*stripe.CheckoutSession, error)
	subscriptionFn    func(id string) (*stripe.Subscription, error)
}

func (f *fakeProvider) CheckoutSession(id string, expand ...string) (*stripe.CheckoutSession, error) {
	if f.checkoutSessionFn == nil {
		return nil, errors.New("unexpected CheckoutSession call")
	}
	return f.checkoutSessionFn(id)
}

func (f *fakeProvider) Subscription(id string, expand ...string) (*stripe.Subscription, error) {
	if f.subscriptionFn == nil {
		return nil, errors.New("unexpected Subscription call")
	}
	return f.subscriptionFn(id)
}

func (f *fakeProvider) NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return nil, errors.New("unexpected NewCheckoutSession call")
}
func (f *fakeProvider) ListSubscriptions(customerID string) ([]*stripe.Subscription, error) {
	return nil, errors.New("unexpected ListSubscriptions call")
}
func (f *fakeProvider) UpdateSubscription(id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	return nil, errors.New("unexpected UpdateSubscription call")
}
func (f *fakeProvider) Customer(id string) (*stripe.Customer, error) {
	return nil, errors.New("unexpected Customer call")
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

func newReconcileRouter(store *memStore, provider *fakeProvider, withProjector bool) *gin.Engine {
	var projector *subscriptions.Projector
	if withProjector {
		projector = subscriptions.NewProjector(store, provider, logger.NewNop())
	}
	h := NewHandler(nil, provider, store, nil, projector, nil, logger.NewNop())

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "u1")
	})
	r.POST("/billing/reconcile", h.ReconcileCheckout)
	return r
}

func reconcileRequest(sessionID string) *http.Request {
	body, _ := json.Marshal(gin.H{"session_id": sessionID})
	req := httptest.NewRequest(http.MethodPost, "/billing/reconcile", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func paidSession(owner string) *stripe.CheckoutSession {
	return &stripe.CheckoutSession{
		ID:            "cs_1",
		Mode:          stripe.CheckoutSessionModeSubscription,
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		Metadata:      map[string]string{subscriptions.MetadataUserID: owner},
		Customer:      &stripe.Customer{ID: "cus_1"},
		Subscription: &stripe.Subscription{
			ID:                 "sub_1",
			Customer:           &stripe.Customer{ID: "cus_1"},
			Status:             stripe.SubscriptionStatusActive,
			CurrentPeriodStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Unix(),
			CurrentPeriodEnd:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC).Unix(),
			Items: &stripe.SubscriptionItemList{
				Data: []*stripe.SubscriptionItem{
					{Price: &stripe.Price{ID: "price_1"}},
				},
			},
		},
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestReconcileProjectsPaidSession(t *testing.T) {
	store := newMemStore()
	provider := &fakeProvider{
		checkoutSessionFn: func(id string) (*stripe.CheckoutSession, error) {
			require.Equal(t, "cs_1", id)
			return paidSession("u1"), nil
		},
	}
	r := newReconcileRouter(store, provider, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, reconcileRequest("cs_1"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["success"])

	rec, found, _ := store.ByUserID("u1")
	require.True(t, found)
	assert.Equal(t, "active", rec.Status)
	assert.Equal(t, "sub_1", *rec.StripeSubscriptionID)
	assert.Equal(t, "price_1", *rec.StripePriceID)
}

func TestReconcileRejectsForeignSession(t *testing.T) {
	store := newMemStore()
	provider := &fakeProvider{
		checkoutSessionFn: func(id string) (*stripe.CheckoutSession, error) {
			return paidSession("someone-else"), nil
		},
	}
	r := newReconcileRouter(store, provider, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, reconcileRequest("cs_1"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, store.rows)
}

func TestReconcileUnpaidSessionWritesNothing(t *testing.T) {
	store := newMemStore()
	provider := &fakeProvider{
		checkoutSessionFn: func(id string) (*stripe.CheckoutSession, error) {
			sess := paidSession("u1")
			sess.PaymentStatus = stripe.CheckoutSessionPaymentStatusUnpaid
			return sess, nil
		},
	}
	r := newReconcileRouter(store, provider, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, reconcileRequest("cs_1"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["success"])
	assert.Empty(t, store.rows)
}

func TestReconcileCustomerMismatchWritesNothing(t *testing.T) {
	store := newMemStore()
	provider := &fakeProvider{
		checkoutSessionFn: func(id string) (*stripe.CheckoutSession, error) {
			sess := paidSession("u1")
			sess.Subscription.Customer = &stripe.Customer{ID: "cus_other"}
			return sess, nil
		},
	}
	r := newReconcileRouter(store, provider, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, reconcileRequest("cs_1"))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, store.rows)
}

func TestReconcileFailsClosedWithoutServiceRolePersistence(t *testing.T) {
	store := newMemStore()
	r := newReconcileRouter(store, &fakeProvider{}, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, reconcileRequest("cs_1"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, store.rows)
}

func TestReconcileRequiresSessionID(t *testing.T) {
	store := newMemStore()
	r := newReconcileRouter(store, &fakeProvider{}, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, reconcileRequest(""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.rows)
}

func TestReconcileIsIdempotent(t *testing.T) {
	store := newMemStore()
	provider := &fakeProvider{
		checkoutSessionFn: func(id string) (*stripe.CheckoutSession, error) {
			return paidSession("u1"), nil
		},
	}
	r := newReconcileRouter(store, provider, true)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, reconcileRequest("cs_1"))
		require.Equal(t, http.StatusOK, w.Code)
	}

	require.Len(t, store.rows, 1)
	rec, _, _ := store.ByUserID("u1")
	assert.Equal(t, "active", rec.Status)
}
