package billing

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentStore interface {
	// Record inserts a payment once; redelivered invoice events hit the
	// unique invoice id and become no-ops.
	Record(p *Payment) error
	ListByUser(userID string) ([]Payment, error)
}

type gormPaymentStore struct {
	db *gorm.DB
}

func NewPaymentStore(db *gorm.DB) PaymentStore {
	return &gormPaymentStore{db: db}
}

func (s *gormPaymentStore) Record(p *Payment) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_invoice_id"}},
		DoNothing: true,
	}).Create(p).Error
}

func (s *gormPaymentStore) ListByUser(userID string) ([]Payment, error) {
	var payments []Payment
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}
