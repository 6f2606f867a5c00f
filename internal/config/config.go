// Package config loads service settings from environment variables.
//
// Every setting has an env tag and, unless required, a default. Load fills
// the struct, then Validate reports every problem at once so a misconfigured
// deployment fails on startup with the full list.
package config

import (
	"net"
	"strconv"
	"time"
	_ "time/tzdata" // JOBS_TIME_ZONE must resolve on hosts without a zoneinfo database
)

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Jobs     JobsConfig
	Registry RegistryConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout bounds reading the whole request, including the upload body.
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"60s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout also bounds how long shutdown waits for running jobs.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds PostgreSQL pool settings.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`
	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// AutoMigrate applies the record table DDL on startup.
	AutoMigrate bool `env:"DB_AUTO_MIGRATE" default:"true"`
}

// UploadConfig holds upload intake settings.
type UploadConfig struct {
	// MaxFileSize is the largest accepted file in bytes (default: 50MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"52428800"`

	// MaxConcurrent is how many files are processed at once.
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long a job waits for a processing slot before failing.
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"5m"`
}

// JobsConfig controls retention of finished job records.
type JobsConfig struct {
	Retention     time.Duration `env:"JOBS_RETENTION" default:"24h"`
	PruneSchedule string        `env:"JOBS_PRUNE_SCHEDULE" default:"@every 10m"`
	TimeZone      string        `env:"JOBS_TIME_ZONE" default:"UTC"`
}

// RegistryConfig points at an optional bank schema file. When Path is empty
// the built-in schemas are used.
type RegistryConfig struct {
	Path string `env:"SCHEMA_REGISTRY_PATH"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json.
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
