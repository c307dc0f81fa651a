package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `env:",prefix=SERVER_"`

	// Database configuration
	Database DatabaseConfig `env:",prefix=DB_"`

	// Application configuration
	App AppConfig `env:",prefix=APP_"`

	// Geo lookup configuration
	Geo GeoConfig `env:",prefix=GEO_"`

	// Telemetry configuration
	Telemetry TelemetryConfig `env:",prefix=TELEMETRY_"`

	// Feed configuration
	Feed FeedConfig `env:",prefix=FEED_"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string `env:"PORT,default=8080"`
	Host         string `env:"HOST,default=0.0.0.0"`
	ReadTimeout  int    `env:"READ_TIMEOUT,default=30"`  // seconds
	WriteTimeout int    `env:"WRITE_TIMEOUT,default=30"` // seconds
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=postgres"`
	Password string `env:"PASSWORD,default=postgres"`
	Name     string `env:"NAME,default=dealswipe"`
	SSLMode  string `env:"SSL_MODE,default=disable"`
	MaxConns int    `env:"MAX_CONNS,default=25"`
	MinConns int    `env:"MIN_CONNS,default=5"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	Debug       bool   `env:"DEBUG,default=false"`
}

// GeoConfig holds the IP geolocation lookup settings
type GeoConfig struct {
	Endpoint string        `env:"ENDPOINT,default=https://ipapi.co"`
	Timeout  time.Duration `env:"TIMEOUT,default=1500ms"`
	Enabled  bool          `env:"ENABLED,default=true"`
}

// TelemetryConfig holds session and action tracking settings
type TelemetryConfig struct {
	Enabled bool `env:"ENABLED,default=true"`
	// SessionTTL bounds how long unused session metadata stays cached
	SessionTTL time.Duration `env:"SESSION_TTL,default=2h"`
}

// FeedConfig holds feed settings
type FeedConfig struct {
	// SampleFallback serves the built-in deals when the store fails
	SampleFallback  bool          `env:"SAMPLE_FALLBACK,default=true"`
	DefaultValidity time.Duration `env:"DEFAULT_VALIDITY,default=720h"`
	IdleTTL         time.Duration `env:"IDLE_TTL,default=30m"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL,default=1m"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	if cfg.Geo.Timeout <= 0 {
		return nil, fmt.Errorf("GEO_TIMEOUT must be positive, got %s", cfg.Geo.Timeout)
	}
	if cfg.Feed.DefaultValidity <= 0 {
		return nil, fmt.Errorf("FEED_DEFAULT_VALIDITY must be positive, got %s", cfg.Feed.DefaultValidity)
	}
	return &cfg, nil
}

// GetDatabaseURL returns the PostgreSQL connection URL
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if running in development environment
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// SlogLevel maps LOG_LEVEL onto a slog level. Debug forces debug.
func (c *AppConfig) SlogLevel() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GeoEndpoint returns the lookup endpoint, empty when lookups are disabled
func (c *GeoConfig) GeoEndpoint() string {
	if !c.Enabled {
		return ""
	}
	return c.Endpoint
}
