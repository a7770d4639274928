package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ferdhika31/moneylover-mcp/internal/moneylover"
	"github.com/ferdhika31/moneylover-mcp/internal/tokenstore"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// TokenStorageType represents the storage backends for cached tokens.
type TokenStorageType string

const (
	TokenStorageTypeFile    TokenStorageType = "file"
	TokenStorageTypeKeyring TokenStorageType = "keyring"
)

// TransportType represents how the MCP server is exposed to clients.
type TransportType string

const (
	TransportStdio TransportType = "stdio"
	TransportHTTP  TransportType = "http"
)

// Default configuration values
const (
	DefaultConfigLogFormat       = LogFormatText
	DefaultConfigTransport       = TransportStdio
	DefaultConfigServerHost      = "127.0.0.1"
	DefaultConfigServerPort      = 7117
	DefaultConfigShutdownTimeout = 5 * time.Second
	DefaultConfigCacheStorage    = TokenStorageTypeFile
	DefaultConfigKeyringService  = "moneylover-mcp"
)

// ServerConfig holds the HTTP transport's listen address.
type ServerConfig struct {
	Host string `json:"host" validate:"hostname_rfc1123|ip"`
	Port uint16 `json:"port"` // Port range 0-65535 handled by uint16 type
}

// ShutdownConfig holds shutdown behavior configuration.
type ShutdownConfig struct {
	// Timeout for graceful shutdown.
	Timeout time.Duration `json:"timeout"`
}

// APIConfig holds the MoneyLover API endpoints.
type APIConfig struct {
	BaseURL  string `json:"base_url" validate:"required,url"`
	TokenURL string `json:"token_url" validate:"required,url"`
}

// CacheConfig describes where per-identity tokens are persisted between
// process runs.
type CacheConfig struct {
	Storage TokenStorageType `json:"storage" validate:"required,oneof=file keyring"`

	// Storage-specific settings (mutually exclusive based on Storage type)
	Dir     string `json:"dir,omitempty"`     // For file storage: token cache directory
	Service string `json:"service,omitempty"` // For keyring storage: service identifier
}

// NewStore creates a token store from the cache configuration.
func (c *CacheConfig) NewStore() (tokenstore.Store, error) {
	switch c.Storage {
	case TokenStorageTypeFile:
		return tokenstore.NewFileStore(c.Dir)
	case TokenStorageTypeKeyring:
		return tokenstore.NewKeyringStore(c.Service)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.Storage)
	}
}

// Config holds the application's configuration.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel  slog.Level     `json:"log_level"`
	LogFormat LogFormat      `json:"log_format" validate:"oneof=text json"`
	Transport TransportType  `json:"transport" validate:"oneof=stdio http"`
	Server    ServerConfig   `json:"server"`
	Shutdown  ShutdownConfig `json:"shutdown"`
	API       APIConfig      `json:"api"`
	Cache     CacheConfig    `json:"cache"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.Transport == "" {
		c.Transport = DefaultConfigTransport
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultConfigServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultConfigServerPort
	}
	if c.Shutdown.Timeout == 0 {
		c.Shutdown.Timeout = DefaultConfigShutdownTimeout
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = moneylover.DefaultBaseURL
	}
	if c.API.TokenURL == "" {
		c.API.TokenURL = moneylover.DefaultTokenURL
	}
	if c.Cache.Storage == "" {
		c.Cache.Storage = DefaultConfigCacheStorage
	}

	// Dynamic defaults based on storage type
	switch c.Cache.Storage {
	case TokenStorageTypeFile:
		if c.Cache.Dir == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("cache.dir required (auto-detect failed: %w)", err)
			}
			c.Cache.Dir = filepath.Join(configDir, "moneylover-mcp", "tokens")
		}
	case TokenStorageTypeKeyring:
		if c.Cache.Service == "" {
			c.Cache.Service = DefaultConfigKeyringService
		}
	}

	return nil
}

// Validate validates the configuration using struct tags and enum values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Cache.Storage {
	case TokenStorageTypeFile:
		if c.Cache.Dir == "" {
			return errors.New("cache directory required for file storage")
		}
	case TokenStorageTypeKeyring:
		if c.Cache.Service == "" {
			return errors.New("service name required for keyring storage")
		}
	}

	return nil
}
