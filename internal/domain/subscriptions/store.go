package subscriptions

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence surface the projector and readers run on. "Not
// found" is an expected outcome and reported through the bool, not the error.
type Store interface {
	ByUserID(userID string) (*Subscription, bool, error)
	ByCustomerID(customerID string) (*Subscription, bool, error)
	BySubscriptionID(subscriptionID string) (*Subscription, bool, error)

	// Upsert writes the full mirrored record keyed by user id. Replaying the
	// same provider object twice leaves the row unchanged.
	Upsert(rec *Subscription) error

	// EnsureCustomer records the customer id stub for a user without touching
	// any other mirrored field.
	EnsureCustomer(userID, customerID string) error

	// SetStatusBySubscriptionID updates only the status column. Returns false
	// when no row carries that subscription id.
	SetStatusBySubscriptionID(subscriptionID, status string) (bool, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a database handle. Pass the service-role handle for
// provider-validated writes and the row-restricted handle for user reads.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) ByUserID(userID string) (*Subscription, bool, error) {
	return s.first("user_id = ?", userID)
}

func (s *gormStore) ByCustomerID(customerID string) (*Subscription, bool, error) {
	return s.first("stripe_customer_id = ?", customerID)
}

func (s *gormStore) BySubscriptionID(subscriptionID string) (*Subscription, bool, error) {
	return s.first("stripe_subscription_id = ?", subscriptionID)
}

func (s *gormStore) first(query string, arg string) (*Subscription, bool, error) {
	var rec Subscription
	err := s.db.Where(query, arg).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &rec, true, nil
}

func (s *gormStore) Upsert(rec *Subscription) error {
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"stripe_customer_id",
			"stripe_subscription_id",
			"stripe_price_id",
			"status",
			"current_period_start",
			"current_period_end",
			"cancel_at_period_end",
			"updated_at",
		}),
	}).Create(rec).Error
}

func (s *gormStore) EnsureCustomer(userID, customerID string) error {
	rec := Subscription{
		UserID:           userID,
		StripeCustomerID: customerID,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"stripe_customer_id", "updated_at"}),
	}).Create(&rec).Error
}

func (s *gormStore) SetStatusBySubscriptionID(subscriptionID, status string) (bool, error) {
	res := s.db.Model(&Subscription{}).
		Where("stripe_subscription_id = ?", subscriptionID).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
