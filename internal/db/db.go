package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"laundry-booking-backend/config"
	"laundry-booking-backend/internal/model"
)

// Init initializes the database connection, runs migrations and seeds the
// scheduling policy row when none exists.
func Init(cfg *config.DatabaseConfig, defaults *model.Settings) (*gorm.DB, error) {
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
		return nil, err
	}

	if err := SeedSettings(db, defaults); err != nil {
		return nil, err
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate runs the schema migrations and the hand-written DDL the models
// cannot express. Shared with the test suites, which run it against an
// in-memory SQLite database.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Machine{},
		&model.Slot{},
		&model.Reservation{},
		&model.Settings{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	// One active reservation per slot, enforced at the storage boundary.
	// The application serializes check-then-insert per slot; this index is
	// the backstop for writers in other processes.
	ddl := "CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_active_slot " +
		"ON reservations (slot_id) WHERE status IN ('booked', 'validated')"
	if err := db.Exec(ddl).Error; err != nil {
		return fmt.Errorf("failed to create active-reservation index: %w", err)
	}
	return nil
}

// SeedSettings inserts the default scheduling policy if the settings row
// is missing. An existing row is never touched.
func SeedSettings(db *gorm.DB, defaults *model.Settings) error {
	var count int64
	if err := db.Model(&model.Settings{}).Where("id = ?", model.SettingsID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check settings row: %w", err)
	}
	if count > 0 {
		return nil
	}

	seed := *defaults
	seed.ID = model.SettingsID
	if err := seed.Validate(); err != nil {
		return fmt.Errorf("invalid default scheduling policy: %w", err)
	}
	log.Println("Seeding default scheduling policy...")
	if err := db.Create(&seed).Error; err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}
	return nil
}
