package config

import (
	"fmt"

	"github.com/graceolivia/rhythms/internal/env"
)

// Config holds the application configuration.
type Config struct {
	Env string `env:"RHYTHMS_ENV" default:"dev"` // dev, prod

	// Storage Configuration
	StorageType string `env:"RHYTHMS_STORAGE_TYPE" default:"fs"` // fs, sqlite
	FSDir       string `env:"RHYTHMS_FS_DIR" default:"./rhythms-data"`
	SQLitePath  string `env:"RHYTHMS_SQLITE_PATH" default:"./rhythms.db"`

	// Observability Configuration
	OTelEnabled   bool   `env:"RHYTHMS_OTEL_ENABLED" default:"false"`
	OTelCollector string `env:"RHYTHMS_OTEL_COLLECTOR" default:"localhost:4318"`
}

// Load parses RHYTHMS_-prefixed environment variables into a Config and
// validates cross-field dependencies.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageType {
	case "fs":
		if c.FSDir == "" {
			return fmt.Errorf("RHYTHMS_FS_DIR is required when RHYTHMS_STORAGE_TYPE is 'fs'")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("RHYTHMS_SQLITE_PATH is required when RHYTHMS_STORAGE_TYPE is 'sqlite'")
		}
	default:
		return fmt.Errorf("unknown RHYTHMS_STORAGE_TYPE: %s", c.StorageType)
	}
	return nil
}
