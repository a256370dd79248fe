package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, 10*1024*1024, cfg.Storage.MaxLength)
	assert.Equal(t, 25000, cfg.Storage.MaxLines)
	assert.Equal(t, 90*24*time.Hour, cfg.Storage.Retention)
	assert.Equal(t, 24*time.Hour, cfg.Expiry.Interval)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
storage:
  driver: sqlite
  dataDirectory: /var/lib/logshare
  maxLines: 100
  retention: 720h
logging:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 100, cfg.Storage.MaxLines)
	assert.Equal(t, 30*24*time.Hour, cfg.Storage.Retention)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched keys keep their defaults
	assert.Equal(t, 10*1024*1024, cfg.Storage.MaxLength)
	assert.Equal(t, filepath.Join("/var/lib/logshare", "logs.db"), cfg.StoragePath())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "storage:\n  driver: sqlite\n")
	t.Setenv("LOGSHARE_STORAGE_DRIVER", "duckdb")
	t.Setenv("LOGSHARE_STORAGE_MAX_LINES", "42")
	t.Setenv("LOGSHARE_EXPIRY_INTERVAL", "6h")
	t.Setenv("LOGSHARE_METRICS_ENABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverDuckDB, cfg.Storage.Driver)
	assert.Equal(t, 42, cfg.Storage.MaxLines)
	assert.Equal(t, 6*time.Hour, cfg.Expiry.Interval)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: [unterminated"))
		assert.ErrorContains(t, err, "parse config")
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Load(writeConfig(t, "storage:\n  driver: postgres\n"))
		assert.ErrorContains(t, err, "unknown storage driver")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"zero max length", func(c *AppConfig) { c.Storage.MaxLength = 0 }},
		{"negative max lines", func(c *AppConfig) { c.Storage.MaxLines = -1 }},
		{"short retention", func(c *AppConfig) { c.Storage.Retention = time.Minute }},
		{"tight sweep interval", func(c *AppConfig) { c.Expiry.Interval = time.Second }},
		{"bad port", func(c *AppConfig) { c.Server.Port = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}
