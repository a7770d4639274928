// Package config provides the key-value source credential resolution reads
// from: process environment variables overlaid on an optional dotenv file.
//
// Lookups go through the live environment on every call so that changes made
// during the process lifetime take effect immediately. The dotenv file is
// parsed once at construction and only consulted when the environment does
// not carry the key.
package config

import (
	"log/slog"
	"os"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvNoDotenv disables dotenv file loading entirely when set non-empty.
	EnvNoDotenv = "MONEYLOVER_NO_DOTENV"

	// EnvDotenvPath overrides the dotenv file location.
	EnvDotenvPath = "MONEYLOVER_DOTENV_PATH"

	// DefaultDotenvPath is the dotenv file loaded when no override is set.
	DefaultDotenvPath = ".env"
)

// Source resolves configuration keys against the process environment first
// and a dotenv file second.
type Source struct {
	fileValues map[string]string
}

// NewSource creates a Source, loading the dotenv file unless disabled.
// A missing or unreadable dotenv file is not an error: the file is an
// optional convenience, so failures are logged and the environment remains
// the sole source.
func NewSource() *Source {
	s := &Source{fileValues: map[string]string{}}

	if os.Getenv(EnvNoDotenv) != "" {
		return s
	}

	path := os.Getenv(EnvDotenvPath)
	if path == "" {
		path = DefaultDotenvPath
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("skipping dotenv file", "path", path, "error", err)
		}
		return s
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), dotenv.Parser()); err != nil {
		// Best-effort load: a malformed dotenv file must not take the
		// whole server down when credentials may come from the
		// environment anyway.
		slog.Warn("failed to load dotenv file", "path", path, "error", err)
		return s
	}

	for key := range k.All() {
		s.fileValues[key] = k.String(key)
	}
	return s
}

// Get returns the value for key, preferring the live environment over the
// dotenv file. Returns the empty string when the key is set nowhere.
func (s *Source) Get(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return s.fileValues[key]
}
