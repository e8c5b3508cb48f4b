package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Load builds the configuration from environment variables.
//
// Variables use underscore separators and are mapped onto config sections by
// splitting on the first underscore:
//
//	MONGO_URI               -> mongo.uri
//	MONGO_CONNECT_TIMEOUT   -> mongo.connect_timeout
//	VOYAGE_API_KEY          -> voyage.api_key
//	LOG_LEVEL               -> log.level
//	TELEMETRY_ENDPOINT      -> telemetry.endpoint
//
// Missing optional values fall back to defaults; missing required values
// (MONGO_URI, VOYAGE_API_KEY) fail validation.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider("", ".", func(s string) string {
		// Split on first underscore only: section.field_name.
		// Field names keep their remaining underscores.
		lower := strings.ToLower(s)
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	// An explicit zero disables rate limiting, so the default applies only
	// when the variable is absent.
	if !k.Exists("voyage.requests_per_second") {
		cfg.Voyage.RequestsPerSecond = 3
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
