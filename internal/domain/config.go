package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	// Classification windows are read separately so that an absent key stays
	// nil instead of decoding to zero.
	Classification WindowConfig  `mapstructure:"-"`
	Server         ServerConfig  `mapstructure:"server"`
	Store          StoreConfig   `mapstructure:"store"`
	Summary        SummaryConfig `mapstructure:"summary"`
	Cache          CacheConfig   `mapstructure:"cache"`
	Logging        LoggingConfig `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// Requests per second per client IP; zero disables limiting.
	RateLimit      float64  `mapstructure:"rate_limit"`
	RateBurst      int      `mapstructure:"rate_burst"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxBodyBytes   int64    `mapstructure:"max_body_bytes"`
}

// Store drivers.
const (
	StoreDriverNone     = "none"
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
)

// StoreConfig selects and configures the result store.
type StoreConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	// Apply embedded migrations on connect. PostgreSQL only.
	Migrate bool `mapstructure:"migrate"`
}

// SummaryConfig configures the batch summary service.
type SummaryConfig struct {
	Workers int    `mapstructure:"workers"`
	Format  string `mapstructure:"format"` // "csv", "json"
}

// CacheConfig configures the in-memory report cache used by the HTTP API.
type CacheConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	MaxItems int  `mapstructure:"max_items"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"` // "stdout", "stderr", "file"
	Filename string `mapstructure:"filename"`
}
