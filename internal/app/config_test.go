package app

import (
	"strings"
	"testing"

	"github.com/ferdhika31/moneylover-mcp/internal/moneylover"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Transport != TransportStdio {
		t.Errorf("Transport = %q, want stdio default", cfg.Transport)
	}
	if cfg.API.BaseURL != moneylover.DefaultBaseURL {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, moneylover.DefaultBaseURL)
	}
	if cfg.Cache.Storage != TokenStorageTypeFile || cfg.Cache.Dir == "" {
		t.Errorf("Cache = %+v, want file storage with derived dir", cfg.Cache)
	}
	if !strings.Contains(cfg.Cache.Dir, "moneylover-mcp") {
		t.Errorf("Cache.Dir = %q, want app-scoped directory", cfg.Cache.Dir)
	}
}

func TestValidateRejectsUnknownEnums(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
		{"bad transport", func(c *Config) { c.Transport = "carrier-pigeon" }},
		{"bad storage", func(c *Config) { c.Cache.Storage = "floppy" }},
		{"bad base url", func(c *Config) { c.API.BaseURL = "not a url" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Default()
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() error = nil, want validation failure")
			}
		})
	}
}

func TestKeyringDefaults(t *testing.T) {
	cfg := &Config{Cache: CacheConfig{Storage: TokenStorageTypeKeyring}}
	if err := cfg.ApplyDefaults(); err != nil {
		t.Fatalf("ApplyDefaults() error = %v", err)
	}
	if cfg.Cache.Service != DefaultConfigKeyringService {
		t.Errorf("Cache.Service = %q, want default service", cfg.Cache.Service)
	}
}
