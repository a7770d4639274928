// Package app wires configuration, the credential resolver, the token
// lifecycle manager, and the MCP server into a runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/ferdhika31/moneylover-mcp/internal/config"
	"github.com/ferdhika31/moneylover-mcp/internal/credentials"
	"github.com/ferdhika31/moneylover-mcp/internal/mcpserver"
	"github.com/ferdhika31/moneylover-mcp/internal/moneylover"
	"github.com/ferdhika31/moneylover-mcp/internal/session"
)

// App orchestrates the lifecycle of the MCP server and its collaborators.
type App struct {
	cfg    *Config
	server *mcpserver.Server
}

// New creates a new App instance. No I/O is performed until Start.
func New(cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := cfg.Cache.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create token store: %w", err)
	}

	client := moneylover.New(
		moneylover.WithBaseURL(cfg.API.BaseURL),
		moneylover.WithTokenURL(cfg.API.TokenURL),
	)

	resolver := credentials.NewResolver(config.NewSource().Get)

	manager, err := session.NewManager(resolver, store, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	mcpServer, err := mcpserver.New(client, manager)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP server: %w", err)
	}

	return &App{
		cfg:    cfg,
		server: mcpServer,
	}, nil
}

// Start runs the configured transport and blocks until shutdown.
func (a *App) Start(ctx context.Context) error {
	switch a.cfg.Transport {
	case TransportStdio:
		slog.InfoContext(ctx, "serving MCP over stdio")
		return a.server.ServeStdio()
	case TransportHTTP:
		return a.startHTTP(ctx)
	default:
		return fmt.Errorf("unsupported transport: %s", a.cfg.Transport)
	}
}

// startHTTP runs the streamable HTTP transport with graceful shutdown.
// Uses errgroup for runtime error monitoring.
func (a *App) startHTTP(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	address := a.cfg.Server.Host + ":" + strconv.FormatUint(uint64(a.cfg.Server.Port), 10)

	slog.InfoContext(gCtx, "starting MCP server", "address", address)
	serverErrCh, err := a.server.StartHTTP(gCtx, address)
	if err != nil {
		return fmt.Errorf("server startup failed: %w", err)
	}

	// Monitor runtime errors - errgroup cancels context on first error
	g.Go(func() error {
		select {
		case err := <-serverErrCh:
			if err != nil {
				slog.ErrorContext(gCtx, "server runtime error", "error", err)
				return fmt.Errorf("server: %w", err)
			}
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	slog.InfoContext(gCtx, "application ready", "address", address)

	runtimeErr := g.Wait()

	slog.InfoContext(gCtx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Shutdown.Timeout)
	defer cancel()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", runtimeErr))
	}
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "server shutdown failed", "error", err)
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("application stopped")
	return nil
}
