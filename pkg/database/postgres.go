package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	SlowThreshold   time.Duration
	Debug           bool
}

// DSN renders the libpq connection string.
func (c *PostgresConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Database, c.SSLMode)
	if c.Password != "" {
		dsn += " password=" + c.Password
	}
	return dsn
}

// NewGormDB creates a new GORM database connection
func NewGormDB(cfg *PostgresConfig, log interfaces.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: NewGormLogger(log, cfg.SlowThreshold, cfg.Debug),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	if cfg.MaxConnections > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MinConnections > 0 {
		sqlDB.SetMaxIdleConns(cfg.MinConnections)
	}
	sqlDB.SetConnMaxLifetime(cfg.MaxConnLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RunMigrations runs all pending database migrations
func RunMigrations(db *gorm.DB, schema string, log interfaces.Logger) error {
	return NewMigrator(db, schema, log).Migrate()
}

// GetPendingMigrations returns a list of migrations that haven't been applied yet
func GetPendingMigrations(db *gorm.DB, schema string, log interfaces.Logger) ([]MigrationEntry, error) {
	return NewMigrator(db, schema, log).GetPendingMigrations()
}
