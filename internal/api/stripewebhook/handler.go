package stripewebhooks

import (
	"io"
	"net/http"

	"subscription-app/internal/domain/billing"
	"subscription-app/internal/domain/subscriptions"
	stripeinfra "subscription-app/internal/infra/stripe"
	"subscription-app/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75/webhook"
)

// Handler ingests asynchronous Stripe events. Writes run through the
// projector built on the service-role store: events describe other users'
// subscriptions, so the row-restricted connection cannot serve them.
type Handler struct {
	provider  stripeinfra.Provider
	projector *subscriptions.Projector
	payments  billing.PaymentStore
	log       *logger.Logger
	secret    string
}

func NewHandler(
	provider stripeinfra.Provider,
	projector *subscriptions.Projector,
	payments billing.PaymentStore,
	log *logger.Logger,
	webhookSecret string,
) *Handler {
	return &Handler{
		provider:  provider,
		projector: projector,
		payments:  payments,
		log:       log,
		secret:    webhookSecret,
	}
}

// StripeWebhook is POST /webhook. Signature verification happens before the
// body is treated as anything but bytes. Known event types that fail are
// answered 500 so Stripe redelivers; unknown types are acknowledged so it
// never does.
func (h *Handler) StripeWebhook(c *gin.Context) {
	payload, err := readBody(c, 65536)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		h.log.Warnw("webhook signature verification failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Signature verification failed"})
		return
	}

	if h.projector == nil {
		h.log.Errorw("webhook received without service-role persistence", "event_id", event.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Persistence not configured"})
		return
	}

	h.log.Infow("processing webhook event", "event_id", event.ID, "event_type", event.Type)

	var handlerErr error
	switch string(event.Type) {
	case "checkout.session.completed":
		handlerErr = h.handleCheckoutSessionCompleted(&event)
	case "customer.subscription.created", "customer.subscription.updated":
		handlerErr = h.handleSubscriptionChanged(&event)
	case "customer.subscription.deleted":
		handlerErr = h.handleSubscriptionDeleted(&event)
	case "invoice.payment_succeeded":
		handlerErr = h.handleInvoicePaymentSucceeded(&event)
	case "invoice.payment_failed":
		handlerErr = h.handleInvoicePaymentFailed(&event)
	default:
		// Acknowledge unknown events so Stripe does not retry them.
		c.JSON(http.StatusOK, gin.H{"message": "Ignored"})
		return
	}

	if handlerErr != nil {
		h.log.Errorw("webhook handler failed",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", handlerErr,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Webhook handler failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Received"})
}

func readBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
