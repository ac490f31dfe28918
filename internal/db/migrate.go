package db

import (
	"errors"                  // Error inspection
	"fmt"                     // Error wrapping
	"taskinn/internal/config" // Connection settings
	"taskinn/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Structured logging
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/driver/postgres"    // Postgres driver for GORM
	"gorm.io/gorm"               // GORM ORM library
)

// Models lists every table managed by AutoMigrate
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Wallet{},
		&domain.WalletTransaction{},
		&domain.AdminWallet{},
		&domain.AdminSettings{},
		&domain.Payment{},
	}
}

// Open connects to the database selected by cfg.DBDriver
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql":
		dialector = mysql.Open(cfg.DSN())
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return gorm.Open(dialector, &gorm.Config{TranslateError: true})
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// SeedAdminSettings creates the singleton settings row if it does not exist yet.
// An existing row is left untouched so operator changes survive re-migration.
func SeedAdminSettings(db *gorm.DB, username, password string) error {
	var existing domain.AdminSettings
	err := db.First(&existing, domain.AdminSettingsID).Error
	if err == nil {
		return nil // Already seeded
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("load admin settings: %w", err)
	}
	if password == "" {
		return errors.New("ADMIN_PASSWORD is required to seed admin settings")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	settings := domain.AdminSettings{
		ID:                domain.AdminSettingsID,
		CommissionRate:    domain.DefaultCommissionRate,
		AdminUsername:     username,
		AdminPasswordHash: string(hash),
	}
	if err := db.Create(&settings).Error; err != nil {
		return fmt.Errorf("create admin settings: %w", err)
	}
	logrus.WithField("admin_username", username).Info("Admin settings seeded")
	return nil
}
