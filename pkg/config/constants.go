package config

import "time"

const (
	// Server ports.
	DefaultHTTPPort = 8000
	DefaultGRPCPort = 9000

	DefaultPostgresPort = 5432
	DefaultSchema       = "content"

	// Connection pool defaults.
	DefaultMaxConnections  = 25
	DefaultMinConnections  = 5
	DefaultMaxConnIdleTime = 30 * time.Minute
	DefaultSlowThreshold   = 200 * time.Millisecond

	DefaultPageSize = 50

	DefaultStaticRoot = "/opt/app/static/"
	DefaultMediaRoot  = "/opt/app/media/"
	DefaultMediaURL   = "/media/"
	DefaultLegacyPath = "db.sqlite"

	DefaultEventStream   = "CATALOG_EVENTS"
	DefaultMaxReconnect  = 10
	DefaultReconnectWait = 2 * time.Second
)
