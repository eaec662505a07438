package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dmrc/retreats/internal/models"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultSQLiteDSN creates retreats.db in the working dir.
const DefaultSQLiteDSN = "retreats.db?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

// Open connects to the configured store and migrates the booking tables.
func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	var (
		conn *gorm.DB
		err  error
	)
	switch driver {
	case "", DriverSQLite:
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}
		conn, err = gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, err
		}
		// SQLite works best with a single writer; cap the pool accordingly.
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	case DriverPostgres:
		conn, err = gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Migrate creates the retreat and booking tables plus the composite
// indexes GORM doesn't derive from struct tags.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.Retreat{},
		&models.RetreatBooking{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	for _, stmt := range []string{
		"CREATE INDEX IF NOT EXISTS idx_booking_retreat_created ON retreat_bookings(retreat_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_booking_retreat_status  ON retreat_bookings(retreat_id, status)",
	} {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
