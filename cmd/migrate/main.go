package main

import (
	"taskinn/internal/config" // Custom import path (Config)
	"taskinn/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Structured logging
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	gdb, err := db.Open(cfg) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	if err := db.SeedAdminSettings(gdb, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logrus.Fatalf("seeding admin settings failed: %v", err)
	}
	logrus.Info("Migration completed.") // Log successful migration
}
