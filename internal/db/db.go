package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"crew-ops-backend/config"
	"crew-ops-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	if err := ApplyConstraints(db); err != nil {
		return nil, err
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate runs the schema migrations for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Customer{},
		&model.Vendor{},
		&model.Project{},
		&model.Position{},
		&model.Worker{},
		&model.Assignment{},
		&model.AuditLog{},
		&model.PushSubscription{},
	)
}

// ApplyConstraints creates the partial unique indexes that make the
// store the authority for the active-assignment invariants. The
// application pre-checks only to produce a friendly conflict message; a
// lost race between two inserts is rejected here.
func ApplyConstraints(db *gorm.DB) error {
	ddls := []string{
		// At most one active PRIMARY per worker.
		"CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_primary_per_worker " +
			"ON assignments (worker_id) " +
			"WHERE ended_at IS NULL AND assignment_type = 'PRIMARY';",

		// At most one active incumbent (PRIMARY or SECONDARY) per position.
		"CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_incumbent_per_position " +
			"ON assignments (position_id) " +
			"WHERE ended_at IS NULL AND assignment_type IN ('PRIMARY', 'SECONDARY');",

		// Common listing path: active rows for a worker, newest first.
		"CREATE INDEX IF NOT EXISTS idx_assignments_worker_created " +
			"ON assignments (worker_id, created_at DESC);",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
