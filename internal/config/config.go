// Package config provides configuration loading for mongotriage.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidConfig is returned when required settings are missing or malformed.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root configuration for the mongotriage CLI.
type Config struct {
	Mongo     MongoConfig     `koanf:"mongo"`
	Voyage    VoyageConfig    `koanf:"voyage"`
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// MongoConfig holds MongoDB Atlas connection settings.
type MongoConfig struct {
	// URI is the full connection string, including credentials
	// (mongodb:// or mongodb+srv://).
	URI Secret `koanf:"uri"`

	// Database is the logical database holding the triage collections.
	Database string `koanf:"database"`

	ConnectTimeout   Duration `koanf:"connect_timeout"`
	OperationTimeout Duration `koanf:"operation_timeout"`
}

// VoyageConfig holds Voyage AI embedding API settings.
type VoyageConfig struct {
	APIKey  Secret `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`

	Timeout Duration `koanf:"timeout"`

	// RequestsPerSecond caps outbound embedding calls. Zero disables
	// client-side rate limiting; Load defaults this to 3 only when the
	// variable is absent.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Endpoint string `koanf:"endpoint"`
}

// Validate checks that required settings are present and well formed.
func (c *Config) Validate() error {
	if !c.Mongo.URI.IsSet() {
		return fmt.Errorf("%w: MONGO_URI is required", ErrInvalidConfig)
	}
	uri := c.Mongo.URI.Value()
	if !strings.HasPrefix(uri, "mongodb://") && !strings.HasPrefix(uri, "mongodb+srv://") {
		return fmt.Errorf("%w: MONGO_URI must use mongodb:// or mongodb+srv:// scheme", ErrInvalidConfig)
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("%w: mongo database name cannot be empty", ErrInvalidConfig)
	}
	if !c.Voyage.APIKey.IsSet() {
		return fmt.Errorf("%w: VOYAGE_API_KEY is required", ErrInvalidConfig)
	}
	if c.Voyage.BaseURL == "" {
		return fmt.Errorf("%w: voyage base URL cannot be empty", ErrInvalidConfig)
	}
	if c.Voyage.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: voyage requests_per_second cannot be negative", ErrInvalidConfig)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level must be one of debug, info, warn, error (got %q)", ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log format must be json or console (got %q)", ErrInvalidConfig, c.Log.Format)
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return fmt.Errorf("%w: telemetry endpoint is required when telemetry is enabled", ErrInvalidConfig)
	}

	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "adaptive_mongo"
	}
	if cfg.Mongo.ConnectTimeout == 0 {
		cfg.Mongo.ConnectTimeout = Duration(10 * time.Second)
	}
	if cfg.Mongo.OperationTimeout == 0 {
		cfg.Mongo.OperationTimeout = Duration(30 * time.Second)
	}

	if cfg.Voyage.BaseURL == "" {
		cfg.Voyage.BaseURL = "https://api.voyageai.com/v1"
	}
	if cfg.Voyage.Model == "" {
		cfg.Voyage.Model = "voyage-code-2"
	}
	if cfg.Voyage.Timeout == 0 {
		cfg.Voyage.Timeout = Duration(30 * time.Second)
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "http://localhost:4318"
	}
}
