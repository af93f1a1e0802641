package database

import (
	"context"
	"fmt"

	"loja-backend/services"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the PostgreSQL database behind the relational store driver.
// Driver errors are translated so the store can recognise duplicate keys.
func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=loja port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return db, nil
}

// CreateDefaultAdmin seeds the admin account on startup.
func CreateDefaultAdmin(ctx context.Context, users *services.UserService, email, password string, log *zap.Logger) error {
	created, err := users.EnsureAdmin(ctx, email, password)
	if err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}
	if created {
		log.Info("default admin created", zap.String("email", email))
	}
	return nil
}
