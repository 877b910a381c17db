package subscriptions

import "time"

// Subscription is the local mirror of a Stripe subscription, one row per
// user. The provider object stays the source of truth; this row is a cache
// written only from provider-sourced data. Rows are never hard-deleted.
type Subscription struct {
	UserID string `gorm:"type:uuid;primaryKey" json:"user_id"`

	StripeCustomerID     string  `gorm:"uniqueIndex:idx_subscriptions_customer" json:"stripe_customer_id"`
	StripeSubscriptionID *string `gorm:"uniqueIndex:idx_subscriptions_subscription" json:"stripe_subscription_id"`
	StripePriceID        *string `json:"stripe_price_id"`

	Status string `gorm:"type:varchar(20);not null;default:'incomplete'" json:"status"`

	CurrentPeriodStart *time.Time `json:"current_period_start"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
