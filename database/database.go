package database

import (
	"log"

	"subscription-app/config"
	"subscription-app/internal/domain/billing"
	"subscription-app/internal/domain/subscriptions"
	"subscription-app/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Init opens the row-restricted application connection and, when configured,
// the BYPASSRLS service-role connection. The service handle is nil when
// DB_SERVICE_URL is unset; callers that need it fail closed.
func Init() (db *gorm.DB, serviceDB *gorm.DB) {
	dsn := config.DB_URL
	if dsn == "" {
		log.Fatal("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if config.DB_SERVICE_URL != "" {
		serviceDB, err = gorm.Open(postgres.Open(config.DB_SERVICE_URL), &gorm.Config{})
		if err != nil {
			log.Fatal("Failed to connect with service-role credentials:", err)
		}
	} else {
		log.Println("DB_SERVICE_URL not set; provider-validated writes will be refused")
	}

	// Migrations run on the most privileged handle available.
	migrator := db
	if serviceDB != nil {
		migrator = serviceDB
	}

	// Required for UUID generation
	if err := migrator.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Fatal("Failed to enable pgcrypto extension:", err)
	}

	if err := migrator.AutoMigrate(
		&users.User{},
		&users.VerificationToken{},
		&subscriptions.Subscription{},
		&billing.Payment{},
	); err != nil {
		log.Fatal("AutoMigrate error:", err)
	}

	log.Println("Connected and migrated successfully")
	return db, serviceDB
}
