package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/snapcook/backend/config"
)

// ErrNotConfigured is returned when no database settings are present.
var ErrNotConfigured = errors.New("database: not configured")

// DB represents the database connection
type DB struct {
	*gorm.DB
	sqlDB *sql.DB
}

// New creates a new database connection
func New(cfg *config.Config) (*DB, error) {
	connStr := cfg.DatabaseDSN()
	if connStr == "" {
		return nil, ErrNotConfigured
	}

	log.Info().Str("host", cfg.DBHost).Str("user", cfg.DBUser).Msg("Connecting to database")

	sqlDB, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error initializing gorm: %w", err)
	}

	log.Info().Msg("Successfully connected to database")
	return &DB{DB: gormDB, sqlDB: sqlDB}, nil
}

// Wrap adopts an already open gorm connection, such as an sqlite database
// in tests.
func Wrap(gormDB *gorm.DB) (*DB, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	return &DB{DB: gormDB, sqlDB: sqlDB}, nil
}

// HealthCheck checks if the database is accessible
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (db *DB) Close() error {
	return db.sqlDB.Close()
}
