package config

import (
	"fmt"
	"time"

	pkgerrors "github.com/narwhalmedia/catalog/pkg/errors"
)

// CatalogConfig configures the read API service.
type CatalogConfig struct {
	BaseConfig `koanf:",squash,flatten"`
	HTTP       HTTPSettings       `koanf:"http"`
	Pagination PaginationSettings `koanf:"pagination"`
	Storage    StorageSettings    `koanf:"storage"`
	Cache      CacheSettings      `koanf:"cache"`
}

// HTTPSettings contains the public HTTP surface settings.
type HTTPSettings struct {
	ReadTimeout        time.Duration `koanf:"read_timeout"`
	WriteTimeout       time.Duration `koanf:"write_timeout"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"`
	RateLimitRequests  int           `koanf:"rate_limit_requests"`
	RateLimitWindow    time.Duration `koanf:"rate_limit_window"`
}

// PaginationSettings controls list endpoints.
type PaginationSettings struct {
	PageSize int `koanf:"page_size"`
}

// StorageSettings locates static assets and filmwork media files.
type StorageSettings struct {
	StaticRoot  string        `koanf:"static_root"`
	MediaRoot   string        `koanf:"media_root"`
	MediaURL    string        `koanf:"media_url"`
	Backend     string        `koanf:"backend"` // local or s3
	S3Bucket    string        `koanf:"s3_bucket"`
	S3Prefix    string        `koanf:"s3_prefix"`
	S3Region    string        `koanf:"s3_region"`
	S3URLExpiry time.Duration `koanf:"s3_url_expiry"`
}

// CacheSettings controls the in-process projection cache.
type CacheSettings struct {
	TTL time.Duration `koanf:"ttl"`
}

// Validate validates the catalog configuration
func (c *CatalogConfig) Validate() error {
	if err := c.BaseConfig.Validate(); err != nil {
		return err
	}
	if err := validPort("grpc port", c.Service.GRPCPort); err != nil {
		return err
	}
	if c.Pagination.PageSize < 1 {
		return pkgerrors.Config("page size must be at least 1")
	}
	switch c.Storage.Backend {
	case "local":
		if c.Storage.MediaRoot == "" {
			return pkgerrors.Config("media root is required for local storage")
		}
	case "s3":
		if c.Storage.S3Bucket == "" || c.Storage.S3Region == "" {
			return pkgerrors.Config("s3 bucket and region are required for s3 storage")
		}
	default:
		return pkgerrors.Config(fmt.Sprintf("unknown storage backend %q", c.Storage.Backend))
	}
	return nil
}

// LoaderConfig configures the legacy import job.
type LoaderConfig struct {
	BaseConfig `koanf:",squash,flatten"`
	Legacy     LegacySettings `koanf:"legacy"`
	Import     ImportSettings `koanf:"import"`
	NATS       NATSConfig     `koanf:"nats"`
}

// LegacySettings points at the legacy single-file database.
type LegacySettings struct {
	Path string `koanf:"path"`
}

// ImportSettings tunes the transformation and load.
type ImportSettings struct {
	DryRun       bool `koanf:"dry_run"`
	DedupeActors bool `koanf:"dedupe_actors"`
}

// Validate validates the loader configuration
func (c *LoaderConfig) Validate() error {
	if err := c.BaseConfig.Validate(); err != nil {
		return err
	}
	if c.Legacy.Path == "" {
		return pkgerrors.Config("legacy database path is required")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return pkgerrors.Config("nats url is required when nats is enabled")
	}
	return nil
}

// MigrateConfig configures the schema migration tool.
type MigrateConfig struct {
	BaseConfig `koanf:",squash,flatten"`
}

// GetDefaultCatalogConfig returns default catalog configuration
func GetDefaultCatalogConfig() *CatalogConfig {
	base := GetDefaults()
	base.Service.Name = "catalog"

	return &CatalogConfig{
		BaseConfig: *base,
		HTTP: HTTPSettings{
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   30 * time.Second,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Pagination: PaginationSettings{
			PageSize: DefaultPageSize,
		},
		Storage: StorageSettings{
			StaticRoot:  DefaultStaticRoot,
			MediaRoot:   DefaultMediaRoot,
			MediaURL:    DefaultMediaURL,
			Backend:     "local",
			S3URLExpiry: 15 * time.Minute,
		},
		Cache: CacheSettings{
			TTL: 5 * time.Minute,
		},
	}
}

// GetDefaultLoaderConfig returns default loader configuration
func GetDefaultLoaderConfig() *LoaderConfig {
	base := GetDefaults()
	base.Service.Name = "loaddata"
	base.Metrics.Enabled = false

	return &LoaderConfig{
		BaseConfig: *base,
		Legacy: LegacySettings{
			Path: DefaultLegacyPath,
		},
		NATS: defaultNATS("catalog-loaddata"),
	}
}

// GetDefaultMigrateConfig returns default migrate configuration
func GetDefaultMigrateConfig() *MigrateConfig {
	base := GetDefaults()
	base.Service.Name = "migrate"
	base.Metrics.Enabled = false
	return &MigrateConfig{BaseConfig: *base}
}

// CatalogEnvAliases maps the environment names used by the original web
// deployment onto catalog config keys.
var CatalogEnvAliases = map[string]string{
	"DJANGO_POSTGRES_HOST":     "database.host",
	"DJANGO_POSTGRES_PORT":     "database.port",
	"DJANGO_POSTGRES_DB":       "database.database",
	"DJANGO_POSTGRES_USER":     "database.user",
	"DJANGO_POSTGRES_PASSWORD": "database.password",
	"DJANGO_STATIC_ROOT":       "storage.static_root",
	"DJANGO_MEDIA_ROOT":        "storage.media_root",
}

// LoaderEnvAliases maps the environment names used by the original import
// script onto loader config keys.
var LoaderEnvAliases = map[string]string{
	"SD_POSTGRES_HOST":     "database.host",
	"SD_POSTGRES_PORT":     "database.port",
	"SD_POSTGRES_DBNAME":   "database.database",
	"SD_POSTGRES_USER":     "database.user",
	"SD_POSTGRES_PASSWORD": "database.password",
	"SD_SQLITE_PATH":       "legacy.path",
}
