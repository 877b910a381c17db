package routes

import (
	authapi "subscription-app/internal/api/auth"
	"subscription-app/internal/api/billing"
	serverapi "subscription-app/internal/api/server"
	stripewebhooks "subscription-app/internal/api/stripewebhook"
	usersapi "subscription-app/internal/api/users"
	"subscription-app/internal/app/http/middleware"
	"subscription-app/internal/domain/subscriptions"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth    *authapi.Handler
	Users   *usersapi.Handler
	Billing *billing.Handler
	Webhook *stripewebhooks.Handler
	Server  *serverapi.Handler
	Reader  *subscriptions.Reader
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	// The webhook must see the raw body; no sanitization in front of it.
	r.POST("/webhook", h.Webhook.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/plans", h.Billing.ListPlans)

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())
	public.POST("/register", h.Auth.Register)
	public.POST("/login", h.Auth.Login)
	public.POST("/request-password-reset", h.Auth.RequestPasswordReset)
	public.POST("/reset-password", h.Auth.ResetPassword)

	r.GET("/verify", h.Auth.VerifyEmail)
	r.GET("/auth/google", h.Auth.GoogleStart)
	r.GET("/auth/google/callback", h.Auth.GoogleCallback)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware())
	auth.GET("/me", h.Users.GetCurrentUser)
	auth.POST("/change-password", h.Auth.ChangePassword)

	auth.GET("/billing/subscription", h.Billing.GetSubscriptionStatus)
	auth.GET("/billing/payments", h.Billing.GetPaymentHistory)
	auth.POST("/billing/checkout", h.Billing.CreateCheckoutSession)
	auth.POST("/billing/portal", h.Billing.CreateBillingPortal)
	auth.POST("/billing/reconcile", h.Billing.ReconcileCheckout)
	auth.POST("/billing/cancel", h.Billing.CancelSubscription)
	auth.POST("/billing/resume", h.Billing.ResumeSubscription)

	// Subscribed users only
	subscribed := auth.Group("/")
	subscribed.Use(middleware.RequireActiveSubscription(h.Reader))
	subscribed.POST("/api/server/:endpoint", h.Server.Call)
}
