package main

import (
	"log"
	"time"

	"subscription-app/config"
	"subscription-app/database"
	authapi "subscription-app/internal/api/auth"
	billingapi "subscription-app/internal/api/billing"
	serverapi "subscription-app/internal/api/server"
	stripewebhooks "subscription-app/internal/api/stripewebhook"
	usersapi "subscription-app/internal/api/users"
	routes "subscription-app/internal/app/http"
	billingdomain "subscription-app/internal/domain/billing"
	"subscription-app/internal/domain/subscriptions"
	stripeinfra "subscription-app/internal/infra/stripe"
	"subscription-app/internal/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadEnv()

	logg, err := logger.New()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logg.Sync()

	db, serviceDB := database.Init()
	provider := stripeinfra.NewClient(config.STRIPE_SECRET_KEY)

	store := subscriptions.NewStore(db)
	reader := subscriptions.NewReader(store, provider, config.SUBSCRIPTION_READ_POLICY)

	// Provider-validated writes (webhook, reconcile) go through the
	// service-role handle only; without it the projector stays nil and those
	// paths fail closed.
	var projector *subscriptions.Projector
	var payments billingdomain.PaymentStore
	if serviceDB != nil {
		serviceStore := subscriptions.NewStore(serviceDB)
		projector = subscriptions.NewProjector(serviceStore, provider, logg)
		payments = billingdomain.NewPaymentStore(serviceDB)
	} else {
		payments = billingdomain.NewPaymentStore(db)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Handlers{
		Auth:    authapi.NewHandler(db, logg),
		Users:   usersapi.NewHandler(db, store, logg),
		Billing: billingapi.NewHandler(db, provider, store, reader, projector, payments, logg),
		Webhook: stripewebhooks.NewHandler(provider, projector, payments, logg, config.STRIPE_WEBHOOK_SECRET),
		Server:  serverapi.NewHandler(logg),
		Reader:  reader,
	})

	r.Run(":" + config.PORT)
}
