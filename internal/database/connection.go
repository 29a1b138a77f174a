// internal/database/connection.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/readify-backend/internal/config"
	"github.com/javajoker/readify-backend/internal/models"
	"github.com/javajoker/readify-backend/internal/repository"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	}

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established successfully")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	// gen_random_uuid() is built in from PostgreSQL 13; pgcrypto covers older servers
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"pgcrypto\"").Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	err := db.AutoMigrate(
		&models.Account{},
		&models.Client{},
		&models.ClientOrderRef{},
		&models.Product{},
		&models.Order{},
		&models.AccountOrder{},
		&models.Invoice{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_clients_account_created ON clients(account_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_products_account_created ON products(account_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_orders_account_placed ON orders(account_id, placed_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_account_orders_account_created ON account_orders(account_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_invoices_account_issued ON invoices(account_id, issued_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_account_action ON audit_logs(account_id, action)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).WithField("index", index).Warn("Failed to create index")
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

const (
	demoEmail    = "demo@readify.local"
	demoPassword = "readify123"
)

// SeedDemoData creates a demo account with a small catalog for local
// development. It is a no-op when the account already exists.
func SeedDemoData(ctx context.Context, store repository.Store) error {
	if _, err := store.GetAccountByEmail(ctx, demoEmail); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up demo account: %w", err)
	}

	logrus.Info("Seeding demo data...")

	return store.Transaction(ctx, func(tx repository.Store) error {
		account := &models.Account{Email: demoEmail}
		if err := account.SetPassword(demoPassword); err != nil {
			return fmt.Errorf("failed to set demo password: %w", err)
		}
		if err := tx.CreateAccount(ctx, account); err != nil {
			return fmt.Errorf("failed to create demo account: %w", err)
		}

		products := []models.Product{
			{Name: "Notebook A5", Price: 120, Quantity: 50, Pictures: []string{"https://placehold.co/200x200?text=Notebook"}},
			{Name: "Gel Pen (Blue)", Price: 25, Quantity: 200, Pictures: []string{"https://placehold.co/200x200?text=Pen"}},
			{Name: "Desk Organizer", Price: 450, Quantity: 10, Pictures: []string{"https://placehold.co/200x200?text=Organizer"}},
		}
		for i := range products {
			products[i].AccountID = account.ID
			if err := tx.CreateProduct(ctx, &products[i]); err != nil {
				return fmt.Errorf("failed to create demo product: %w", err)
			}
		}

		client := &models.Client{
			AccountID: account.ID,
			Name:      "City Book Depot",
			Address:   "12 MG Road, Pune",
			PhoneNo:   "+91 98765 43210",
		}
		if err := tx.CreateClient(ctx, client); err != nil {
			return fmt.Errorf("failed to create demo client: %w", err)
		}

		logrus.WithField("email", demoEmail).Info("Demo account created")
		return nil
	})
}
