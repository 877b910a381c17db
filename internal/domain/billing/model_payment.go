package billing

import "time"

// Payment is one settled invoice, recorded from invoice.payment_succeeded.
type Payment struct {
	ID                   uint   `gorm:"primaryKey" json:"id"`
	UserID               string `gorm:"type:uuid;index" json:"user_id"`
	StripeInvoiceID      string `gorm:"uniqueIndex" json:"stripe_invoice_id"`
	StripeSubscriptionID *string `json:"stripe_subscription_id"`
	Amount               float64 `json:"amount"`
	Currency             string  `json:"currency"`
	Status               string  `json:"status"`
	HostedInvoiceURL     *string `json:"hosted_invoice_url"`
	CreatedAt            time.Time `json:"created_at"`
}
