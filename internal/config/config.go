// Package config provides YAML-based configuration with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers understood by storage.Open.
const (
	DriverFile   = "file"
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LOGSHARE_"

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Expiry  ExpiryConfig  `yaml:"expiry"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	BindAddress  string        `yaml:"bindAddress"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
	BodyLimit    string        `yaml:"bodyLimit"`
	BaseURL      string        `yaml:"baseURL"`
	APIBaseURL   string        `yaml:"apiBaseURL"`
}

// StorageConfig selects the backend and the ingestion limits.
type StorageConfig struct {
	Driver            string        `yaml:"driver"`
	DataDirectory     string        `yaml:"dataDirectory"`
	DSN               string        `yaml:"dsn"`
	MaxLength         int           `yaml:"maxLength"`
	MaxLines          int           `yaml:"maxLines"`
	Retention         time.Duration `yaml:"retention"`
	DuckDBMemoryLimit string        `yaml:"duckdbMemoryLimit"`
	DuckDBThreads     int           `yaml:"duckdbThreads"`
}

// ExpiryConfig controls the background retention sweep.
type ExpiryConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level          string `yaml:"level"`
	Format         string `yaml:"format"`
	RequestLogging bool   `yaml:"requestLogging"`
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when empty), then LOGSHARE_* environment variables.
func Load(path string) (*AppConfig, error) {
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8080,
			BindAddress:  "0.0.0.0",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
			BodyLimit:    "12M",
			BaseURL:      "http://localhost:8080",
			APIBaseURL:   "http://localhost:8080",
		},
		Storage: StorageConfig{
			Driver:            DriverFile,
			DataDirectory:     "./data",
			MaxLength:         10 * 1024 * 1024,
			MaxLines:          25000,
			Retention:         90 * 24 * time.Hour,
			DuckDBMemoryLimit: "512MB",
			DuckDBThreads:     2,
		},
		Expiry: ExpiryConfig{
			Enabled:  true,
			Interval: 24 * time.Hour,
			Timeout:  10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:          "info",
			Format:         "json",
			RequestLogging: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for values no component can work with.
func (c *AppConfig) Validate() error {
	switch c.Storage.Driver {
	case DriverFile, DriverDuckDB, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.MaxLength <= 0 {
		return fmt.Errorf("storage.maxLength must be positive, got %d", c.Storage.MaxLength)
	}
	if c.Storage.MaxLines <= 0 {
		return fmt.Errorf("storage.maxLines must be positive, got %d", c.Storage.MaxLines)
	}
	if c.Storage.Retention < time.Hour {
		return fmt.Errorf("storage.retention must be at least 1h, got %s", c.Storage.Retention)
	}
	if c.Expiry.Enabled && c.Expiry.Interval < time.Minute {
		return fmt.Errorf("expiry.interval must be at least 1m, got %s", c.Expiry.Interval)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// GetServerAddr returns the listen address.
func (c *AppConfig) GetServerAddr() string {
	return net.JoinHostPort(c.Server.BindAddress, strconv.Itoa(c.Server.Port))
}

// StoragePath returns the file or directory the configured driver writes to.
func (c *AppConfig) StoragePath() string {
	switch c.Storage.Driver {
	case DriverDuckDB:
		if c.Storage.DSN != "" {
			return c.Storage.DSN
		}
		return filepath.Join(c.Storage.DataDirectory, "logs.duckdb")
	case DriverSQLite:
		if c.Storage.DSN != "" {
			return c.Storage.DSN
		}
		return filepath.Join(c.Storage.DataDirectory, "logs.db")
	default:
		return filepath.Join(c.Storage.DataDirectory, "logs")
	}
}

// EnsureDirectories creates the data directory.
func (c *AppConfig) EnsureDirectories() error {
	if err := os.MkdirAll(c.Storage.DataDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", c.Storage.DataDirectory, err)
	}
	return nil
}

func applyEnvOverrides(cfg *AppConfig) {
	str := func(key string, dst *string) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}
	flag := func(key string, dst *bool) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			*dst = strings.EqualFold(v, "true") || v == "1"
		}
	}

	num("SERVER_PORT", &cfg.Server.Port)
	str("SERVER_BIND_ADDRESS", &cfg.Server.BindAddress)
	str("SERVER_BODY_LIMIT", &cfg.Server.BodyLimit)
	str("SERVER_BASE_URL", &cfg.Server.BaseURL)
	str("SERVER_API_BASE_URL", &cfg.Server.APIBaseURL)
	dur("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	dur("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)

	str("STORAGE_DRIVER", &cfg.Storage.Driver)
	str("STORAGE_DATA_DIRECTORY", &cfg.Storage.DataDirectory)
	str("STORAGE_DSN", &cfg.Storage.DSN)
	num("STORAGE_MAX_LENGTH", &cfg.Storage.MaxLength)
	num("STORAGE_MAX_LINES", &cfg.Storage.MaxLines)
	dur("STORAGE_RETENTION", &cfg.Storage.Retention)
	str("STORAGE_DUCKDB_MEMORY_LIMIT", &cfg.Storage.DuckDBMemoryLimit)
	num("STORAGE_DUCKDB_THREADS", &cfg.Storage.DuckDBThreads)

	flag("EXPIRY_ENABLED", &cfg.Expiry.Enabled)
	dur("EXPIRY_INTERVAL", &cfg.Expiry.Interval)

	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)
	flag("LOG_REQUESTS", &cfg.Logging.RequestLogging)

	flag("METRICS_ENABLED", &cfg.Metrics.Enabled)
	str("METRICS_PATH", &cfg.Metrics.Path)
}
