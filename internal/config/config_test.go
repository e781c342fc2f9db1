package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graceolivia/rhythms/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "fs", cfg.StorageType)
	assert.Equal(t, "./rhythms-data", cfg.FSDir)
	assert.Equal(t, "./rhythms.db", cfg.SQLitePath)
	assert.False(t, cfg.OTelEnabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("RHYTHMS_ENV", "prod")
	t.Setenv("RHYTHMS_STORAGE_TYPE", "sqlite")
	t.Setenv("RHYTHMS_SQLITE_PATH", "/var/lib/rhythms/rhythms.db")
	t.Setenv("RHYTHMS_OTEL_ENABLED", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "sqlite", cfg.StorageType)
	assert.Equal(t, "/var/lib/rhythms/rhythms.db", cfg.SQLitePath)
	assert.True(t, cfg.OTelEnabled)
}

func TestLoadRejectsUnknownStorageType(t *testing.T) {
	t.Setenv("RHYTHMS_STORAGE_TYPE", "postgres")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown RHYTHMS_STORAGE_TYPE")
}

func TestLoadRequiresSQLitePath(t *testing.T) {
	t.Setenv("RHYTHMS_STORAGE_TYPE", "sqlite")
	t.Setenv("RHYTHMS_SQLITE_PATH", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RHYTHMS_SQLITE_PATH is required")
}
