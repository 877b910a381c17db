package billing

import (
	"gorm.io/gorm"

	"subscription-app/internal/domain/billing"
	"subscription-app/internal/domain/subscriptions"
	stripeinfra "subscription-app/internal/infra/stripe"
	"subscription-app/internal/logger"
)

// Handler serves the user-facing billing endpoints. Reads run on the
// row-restricted store; the projector is built on the service-role store and
// is nil when that credential is absent, in which case reconciliation
// refuses to run.
type Handler struct {
	db        *gorm.DB
	provider  stripeinfra.Provider
	store     subscriptions.Store
	reader    *subscriptions.Reader
	projector *subscriptions.Projector
	payments  billing.PaymentStore
	log       *logger.Logger
}

func NewHandler(
	db *gorm.DB,
	provider stripeinfra.Provider,
	store subscriptions.Store,
	reader *subscriptions.Reader,
	projector *subscriptions.Projector,
	payments billing.PaymentStore,
	log *logger.Logger,
) *Handler {
	return &Handler{
		db:        db,
		provider:  provider,
		store:     store,
		reader:    reader,
		projector: projector,
		payments:  payments,
		log:       log,
	}
}
