package config

import (
	"fmt"
	"os"

	"github.com/narwhalmedia/catalog/pkg/database"
	"github.com/narwhalmedia/catalog/pkg/logger"
)

// LoadServiceConfig is a generic helper to load service configuration
func LoadServiceConfig[T Config](serviceName string, cfg T, opts ...Option) error {
	return NewManager(serviceName, opts...).LoadConfig(cfg)
}

// ToDatabaseConfig converts config to database package config
func (c DatabaseConfig) ToDatabaseConfig() *database.PostgresConfig {
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}

	return &database.PostgresConfig{
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		Database:        c.Database,
		SSLMode:         c.SSLMode,
		MaxConnections:  c.MaxConnections,
		MinConnections:  c.MinConnections,
		MaxConnLifetime: c.MaxConnLifetime,
		MaxConnIdleTime: c.MaxConnIdleTime,
		SlowThreshold:   c.SlowThreshold,
	}
}

// ToLoggerConfig converts config to logger package config
func (c LoggerConfig) ToLoggerConfig() *logger.Config {
	cfg := logger.DefaultConfig()
	if c.Development {
		cfg = logger.DevelopmentConfig()
	}
	if c.Level != "" {
		cfg.Level = c.Level
	}
	if c.Format != "" {
		cfg.Encoding = c.Format
	}
	if c.OutputPath != "" {
		cfg.OutputPaths = []string{c.OutputPath}
	}
	return cfg
}

// GetServiceVersion returns the service version from config or environment
func GetServiceVersion(cfg *ServiceConfig) string {
	if cfg.Version != "" {
		return cfg.Version
	}
	if version := os.Getenv("SERVICE_VERSION"); version != "" {
		return version
	}
	return "dev"
}

// IsProduction returns true if running in production environment
func IsProduction(cfg *ServiceConfig) bool {
	return cfg.Environment == "production" || cfg.Environment == "prod"
}

// GetListenAddress returns the formatted listen address for HTTP server
func GetListenAddress(cfg *ServiceConfig) string {
	return fmt.Sprintf(":%d", cfg.Port)
}

// GetGRPCListenAddress returns the formatted listen address for gRPC server
func GetGRPCListenAddress(cfg *ServiceConfig) string {
	return fmt.Sprintf(":%d", cfg.GRPCPort)
}
