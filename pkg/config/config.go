package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	pkgerrors "github.com/narwhalmedia/catalog/pkg/errors"
)

// Config is the interface that all service configs must implement.
type Config interface {
	Validate() error
}

// BaseConfig contains common configuration for all binaries.
type BaseConfig struct {
	Service  ServiceConfig  `koanf:"service"`
	Database DatabaseConfig `koanf:"database"`
	Logger   LoggerConfig   `koanf:"logger"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// ServiceConfig contains service-specific metadata.
type ServiceConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // dev, staging, production
	Port        int    `koanf:"port"`
	GRPCPort    int    `koanf:"grpc_port"`
}

// DatabaseConfig contains the target PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Database        string        `koanf:"database"`
	SSLMode         string        `koanf:"ssl_mode"`
	Schema          string        `koanf:"schema"`
	MaxConnections  int           `koanf:"max_connections"`
	MinConnections  int           `koanf:"min_connections"`
	MaxConnLifetime time.Duration `koanf:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `koanf:"max_conn_idle_time"`
	SlowThreshold   time.Duration `koanf:"slow_threshold"`
}

// LoggerConfig contains logging configuration.
type LoggerConfig struct {
	Level       string `koanf:"level"`  // debug, info, warn, error
	Format      string `koanf:"format"` // json, console
	Development bool   `koanf:"development"`
	OutputPath  string `koanf:"output_path"` // stdout, stderr, or file path
}

// MetricsConfig contains metrics configuration.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// NATSConfig contains the optional event forwarding settings.
type NATSConfig struct {
	Enabled       bool          `koanf:"enabled"`
	URL           string        `koanf:"url"`
	ClientID      string        `koanf:"client_id"`
	Stream        string        `koanf:"stream"`
	MaxReconnect  int           `koanf:"max_reconnect"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
}

// Manager handles configuration loading and parsing.
type Manager struct {
	k           *koanf.Koanf
	serviceName string
	configPaths []string
	aliases     map[string]string
}

// Option customises a Manager.
type Option func(*Manager)

// WithEnvAliases maps extra, unprefixed environment variables onto config keys.
// Prefixed variables still take precedence.
func WithEnvAliases(aliases map[string]string) Option {
	return func(m *Manager) {
		for k, v := range aliases {
			m.aliases[strings.ToUpper(k)] = v
		}
	}
}

// WithConfigPaths replaces the default file search paths.
func WithConfigPaths(paths ...string) Option {
	return func(m *Manager) {
		m.configPaths = paths
	}
}

// NewManager creates a new configuration manager.
func NewManager(serviceName string, opts ...Option) *Manager {
	m := &Manager{
		k:           koanf.New("."),
		serviceName: serviceName,
		configPaths: getDefaultConfigPaths(serviceName),
		aliases:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LoadConfig loads configuration from all sources.
func (m *Manager) LoadConfig(cfg Config) error {
	// 1. Defaults from the struct itself
	if err := m.k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config files, later files override earlier ones
	for _, path := range m.configPaths {
		if err := m.loadFromFile(path); err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("failed to load config from %s: %w", path, err)
			}
		}
	}

	// 3. Environment
	if err := m.loadFromEnv(); err != nil {
		return fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := splitSliceFields(m.k, sliceConfigPaths); err != nil {
		return err
	}

	if err := m.k.Unmarshal("", cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Get returns a value for the given key.
func (m *Manager) Get(key string) interface{} {
	return m.k.Get(key)
}

// GetString returns a string value for the given key.
func (m *Manager) GetString(key string) string {
	return m.k.String(key)
}

func (m *Manager) loadFromFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}
	return m.k.Load(file.Provider(path), parser)
}

func (m *Manager) loadFromEnv() error {
	if len(m.aliases) > 0 {
		err := m.k.Load(env.Provider("", ".", func(s string) string {
			return m.aliases[s]
		}), nil)
		if err != nil {
			return err
		}
	}

	prefix := strings.ToUpper(m.serviceName) + "_"
	return m.k.Load(env.Provider(prefix, ".", envKeyFunc(prefix)), nil)
}

// envKeyFunc converts CATALOG_DATABASE_MAX_CONNECTIONS to
// database.max_connections: the first segment is the section, the rest is the field.
func envKeyFunc(prefix string) func(string) string {
	return func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, prefix))
		section, field, ok := strings.Cut(key, "_")
		if !ok {
			return key
		}
		return section + "." + field
	}
}

func getDefaultConfigPaths(serviceName string) []string {
	paths := []string{
		"config.yaml",
		fmt.Sprintf("%s.yaml", serviceName),
		"configs/config.yaml",
		fmt.Sprintf("configs/%s.yaml", serviceName),
		fmt.Sprintf("configs/%s.%s.yaml", serviceName, getEnvironment()),
	}

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		paths = append(paths, configPath)
	}

	return paths
}

func getEnvironment() string {
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		return env
	}
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "dev"
}

// sliceConfigPaths lists keys that may arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"http.cors_allowed_origins",
}

func splitSliceFields(k *koanf.Koanf, paths []string) error {
	for _, path := range paths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// Validate validates the base configuration.
func (c *BaseConfig) Validate() error {
	if c.Service.Name == "" {
		return pkgerrors.Config("service name is required")
	}
	if err := validPort("service port", c.Service.Port); err != nil {
		return err
	}
	return c.Database.Validate()
}

// Validate checks that every required connection parameter is present.
func (c DatabaseConfig) Validate() error {
	var missing []string
	if c.Host == "" {
		missing = append(missing, "host")
	}
	if c.User == "" {
		missing = append(missing, "user")
	}
	if c.Database == "" {
		missing = append(missing, "database")
	}
	if len(missing) > 0 {
		return pkgerrors.Config("database " + strings.Join(missing, ", ") + " required")
	}
	return validPort("database port", c.Port)
}

func validPort(name string, port int) error {
	if port <= 0 || port > 65535 {
		return pkgerrors.Config(fmt.Sprintf("invalid %s: %d", name, port))
	}
	return nil
}

// GetDefaults returns default configuration values.
func GetDefaults() *BaseConfig {
	return &BaseConfig{
		Service: ServiceConfig{
			Environment: "dev",
			Port:        DefaultHTTPPort,
			GRPCPort:    DefaultGRPCPort,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            DefaultPostgresPort,
			User:            "app",
			Database:        "movies_database",
			SSLMode:         "disable",
			Schema:          DefaultSchema,
			MaxConnections:  DefaultMaxConnections,
			MinConnections:  DefaultMinConnections,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: DefaultMaxConnIdleTime,
			SlowThreshold:   DefaultSlowThreshold,
		},
		Logger: LoggerConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

func defaultNATS(clientID string) NATSConfig {
	return NATSConfig{
		Enabled:       false,
		URL:           "nats://localhost:4222",
		ClientID:      clientID,
		Stream:        DefaultEventStream,
		MaxReconnect:  DefaultMaxReconnect,
		ReconnectWait: DefaultReconnectWait,
	}
}
