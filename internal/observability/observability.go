// Package observability configures the process-wide logging stack.
//
// All log output goes to stderr: when the MCP server runs over the stdio
// transport, stdout carries protocol frames and must stay clean.
package observability

import (
	"fmt"
	"log/slog"
	"os"
)

// Instrument installs the default slog handler for the given level and
// format ("text" or "json"). It must be called once, before any component
// starts logging.
func Instrument(level slog.Level, format string) error {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("unsupported log format: %s", format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}
