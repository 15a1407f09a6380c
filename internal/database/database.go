// Package database opens the GORM connection and keeps the products schema in sync.
package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"productos/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open builds a GORM handle for the given database URL without touching the network.
// The dialect is chosen from the URL: postgres URLs and keyword DSNs use PostgreSQL,
// "sqlite:", "file:" and ":memory:" use SQLite.
func Open(databaseURL string) (*gorm.DB, error) {
	dialector, err := dialectorFor(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func dialectorFor(databaseURL string) (gorm.Dialector, error) {
	url := strings.TrimSpace(databaseURL)
	switch {
	case url == "":
		return nil, fmt.Errorf("database URL is empty")
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"), strings.Contains(url, "host="):
		return postgres.Open(url), nil
	case strings.HasPrefix(url, "sqlite:"):
		return sqlite.Open(strings.TrimPrefix(strings.TrimPrefix(url, "sqlite:"), "//")), nil
	case strings.HasPrefix(url, "file:"), url == ":memory:":
		return sqlite.Open(url), nil
	default:
		return nil, fmt.Errorf("unsupported database URL %q", url)
	}
}

// Connect checks that the database is reachable and migrates the products schema.
// Failures are logged and returned; callers at startup are expected to carry on
// without the database so that individual requests fail instead of the process.
func Connect(ctx context.Context, db *gorm.DB) error {
	if err := Ping(ctx, db); err != nil {
		log.Printf("Error connecting to the database: %v", err)
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&models.Product{}); err != nil {
		log.Printf("Error connecting to the database: %v", err)
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Println("Database connection established")
	return nil
}

// Clear drops every product and recreates the table from the model.
func Clear(ctx context.Context, db *gorm.DB) error {
	migrator := db.WithContext(ctx).Migrator()
	if err := migrator.DropTable(&models.Product{}); err != nil {
		return fmt.Errorf("failed to drop products table: %w", err)
	}
	if err := migrator.AutoMigrate(&models.Product{}); err != nil {
		return fmt.Errorf("failed to recreate products table: %w", err)
	}
	return nil
}

// Ping reports whether the database currently answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
