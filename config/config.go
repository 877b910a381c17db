package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	PORT        string
	DB_URL      string
	JWT_SECRET  string
	CORS_ORIGIN string

	// APP_URL is the public base URL used for checkout/portal return links.
	APP_URL string

	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string
	STRIPE_PRICE_ID       string

	// DB_SERVICE_URL connects as the BYPASSRLS service role. Optional: when
	// empty the webhook/reconcile write path refuses to run instead of
	// degrading to the row-restricted connection.
	DB_SERVICE_URL string

	// SUBSCRIPTION_READ_POLICY selects the source for "is this user
	// subscribed": "stripe" asks the provider on every read, "cache" trusts
	// the local row. One policy per deployment.
	SUBSCRIPTION_READ_POLICY string

	GOOGLE_CLIENT_ID         string
	GOOGLE_CLIENT_SECRET     string
	GOOGLE_REDIRECT_URL      string
	GOOGLE_FRONTEND_REDIRECT string
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")
	CORS_ORIGIN = getEnv("CORS_ORIGIN", "http://localhost:3000")
	APP_URL = getEnv("APP_URL", "http://localhost:3000")

	STRIPE_SECRET_KEY = mustEnv("STRIPE_SECRET_KEY")
	STRIPE_WEBHOOK_SECRET = mustEnv("STRIPE_WEBHOOK_SECRET")
	STRIPE_PRICE_ID = getEnv("STRIPE_PRICE_ID", "")

	DB_SERVICE_URL = getEnv("DB_SERVICE_URL", "")

	SUBSCRIPTION_READ_POLICY = getEnv("SUBSCRIPTION_READ_POLICY", "stripe")
	if SUBSCRIPTION_READ_POLICY != "stripe" && SUBSCRIPTION_READ_POLICY != "cache" {
		log.Fatalf("SUBSCRIPTION_READ_POLICY must be \"stripe\" or \"cache\", got %q", SUBSCRIPTION_READ_POLICY)
	}

	GOOGLE_CLIENT_ID = getEnv("GOOGLE_CLIENT_ID", "")
	GOOGLE_CLIENT_SECRET = getEnv("GOOGLE_CLIENT_SECRET", "")
	GOOGLE_REDIRECT_URL = getEnv("GOOGLE_REDIRECT_URL", "")
	GOOGLE_FRONTEND_REDIRECT = getEnv("GOOGLE_FRONTEND_REDIRECT", "")
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
