package database

import (
	"fmt"
	"time"

	accountdomain "inboxpilot-backend/internal/account/domain"
	authdomain "inboxpilot-backend/internal/auth/domain"
	chatdomain "inboxpilot-backend/internal/chat/domain"
	emaildomain "inboxpilot-backend/internal/email/domain"
	"inboxpilot-backend/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresConnection opens the application database.
func NewPostgresConnection(cfg *config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.LogLevel == "debug" {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Models lists every table the server owns.
func Models() []interface{} {
	return []interface{}{
		&authdomain.User{},
		&authdomain.Subscription{},
		&accountdomain.Account{},
		&emaildomain.Thread{},
		&emaildomain.Email{},
		&chatdomain.ChatbotInteraction{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
