package stripe

import (
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
)

// Provider is the slice of the Stripe API this app talks to. Handlers receive
// it as a dependency so tests can substitute a fake.
type Provider interface {
	CheckoutSession(id string, expand ...string) (*stripe.CheckoutSession, error)
	NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)

	Subscription(id string, expand ...string) (*stripe.Subscription, error)
	// ListSubscriptions returns every subscription of a customer, any status.
	ListSubscriptions(customerID string) ([]*stripe.Subscription, error)
	UpdateSubscription(id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error)

	Customer(id string) (*stripe.Customer, error)
	NewCustomer(params *stripe.CustomerParams) (*stripe.Customer, error)

	NewBillingPortalSession(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error)

	// ListPrices returns the active recurring prices with products expanded.
	ListPrices() ([]*stripe.Price, error)
}

// Client implements Provider over the official SDK client.
type Client struct {
	api *client.API
}

func NewClient(secretKey string) *Client {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{api: api}
}

func (c *Client) CheckoutSession(id string, expand ...string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	for _, e := range expand {
		params.AddExpand(e)
	}
	return c.api.CheckoutSessions.Get(id, params)
}

func (c *Client) NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return c.api.CheckoutSessions.New(params)
}

func (c *Client) Subscription(id string, expand ...string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	for _, e := range expand {
		params.AddExpand(e)
	}
	return c.api.Subscriptions.Get(id, params)
}

func (c *Client) ListSubscriptions(customerID string) ([]*stripe.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Limit = stripe.Int64(10)

	var subs []*stripe.Subscription
	it := c.api.Subscriptions.List(params)
	for it.Next() {
		subs = append(subs, it.Subscription())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

func (c *Client) UpdateSubscription(id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	return c.api.Subscriptions.Update(id, params)
}

func (c *Client) Customer(id string) (*stripe.Customer, error) {
	return c.api.Customers.Get(id, nil)
}

func (c *Client) NewCustomer(params *stripe.CustomerParams) (*stripe.Customer, error) {
	return c.api.Customers.New(params)
}

func (c *Client) NewBillingPortalSession(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	return c.api.BillingPortalSessions.New(params)
}

func (c *Client) ListPrices() ([]*stripe.Price, error) {
	params := &stripe.PriceListParams{}
	params.Active = stripe.Bool(true)
	params.Type = stripe.String("recurring")
	params.AddExpand("data.product")

	var prices []*stripe.Price
	it := c.api.Prices.List(params)
	for it.Next() {
		prices = append(prices, it.Price())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return prices, nil
}
