// Package session implements the token lifecycle: resolving credential
// material, read-through caching against the token store, single-flight
// login, and the refresh-once retry policy around remote API calls.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ferdhika31/moneylover-mcp/internal/credentials"
	"github.com/ferdhika31/moneylover-mcp/internal/tokenstore"
)

// Authenticator exchanges identity credentials for an access token.
// Implemented by the MoneyLover client's two-step login.
type Authenticator interface {
	ExchangeCredentials(ctx context.Context, email, password string) (string, error)
}

// Manager owns the in-memory token state for the resolved identity and
// coordinates login exchanges so that concurrent callers never trigger
// duplicate logins.
//
// All mutable state lives behind the struct so tests can construct isolated
// instances instead of sharing process-wide variables.
type Manager struct {
	resolver *credentials.Resolver
	store    tokenstore.Store
	auth     Authenticator

	mu       sync.Mutex
	identity string
	token    string
	loaded   bool
	direct   bool

	flight singleflight.Group
}

// NewManager creates a Manager.
func NewManager(resolver *credentials.Resolver, store tokenstore.Store, auth Authenticator) (*Manager, error) {
	if resolver == nil {
		return nil, fmt.Errorf("missing credential resolver")
	}
	if store == nil {
		return nil, fmt.Errorf("missing token store")
	}
	if auth == nil {
		return nil, fmt.Errorf("missing authenticator")
	}

	return &Manager{
		resolver: resolver,
		store:    store,
		auth:     auth,
	}, nil
}

// Token returns a usable access token, or the empty string when no
// credential source is configured (absence is not an error at this layer).
//
// A direct token from configuration short-circuits everything: it is never
// cached, never persisted, and forceRefresh has no effect on it. For
// email/password credentials the token is served from memory, then from the
// store, and only then from a login exchange shared across concurrent
// callers. forceRefresh discards both the cached and the persisted token
// before re-authenticating.
func (m *Manager) Token(ctx context.Context, forceRefresh bool) (string, error) {
	material := m.resolver.Resolve()

	switch material.Kind {
	case credentials.KindDirectToken:
		m.mu.Lock()
		m.identity = credentials.DirectIdentity
		m.token = material.Token
		m.loaded = true
		m.direct = true
		m.mu.Unlock()
		return material.Token, nil

	case credentials.KindNone:
		m.mu.Lock()
		m.invalidateLocked("")
		m.mu.Unlock()
		return "", nil
	}

	m.mu.Lock()
	if m.direct || m.identity != material.Email {
		m.invalidateLocked(material.Email)
	}

	if forceRefresh {
		// The persisted record is presumed stale too, so it must not be
		// re-adopted by the read-through below. Deletion is best effort:
		// the refresh proceeds either way.
		m.token = ""
		m.loaded = true
		if err := m.store.Delete(ctx, material.Email); err != nil {
			slog.WarnContext(ctx, "failed to delete stale token record",
				"identity", material.Email, "error", err)
		}
	}

	if !m.loaded {
		stored, err := m.store.Read(ctx, material.Email)
		if err != nil {
			m.mu.Unlock()
			return "", fmt.Errorf("reading persisted token: %w", err)
		}
		if stored != "" {
			m.token = stored
		}
		m.loaded = true
	}

	if m.token != "" {
		token := m.token
		m.mu.Unlock()
		return token, nil
	}
	m.mu.Unlock()

	return m.login(ctx, material.Email, material.Secret)
}

// login performs the credential exchange, shared across concurrent callers
// for the same identity. On success the token is persisted best-effort and
// adopted into memory; on failure the flight is cleared so the next call
// starts a fresh attempt.
func (m *Manager) login(ctx context.Context, email, secret string) (string, error) {
	result, err, _ := m.flight.Do(email, func() (any, error) {
		token, err := m.auth.ExchangeCredentials(ctx, email, secret)
		if err != nil {
			return nil, err
		}

		// Best-effort persistence: the freshly exchanged token stays
		// valid even when the cache write fails.
		if err := m.store.Write(ctx, email, token); err != nil {
			slog.WarnContext(ctx, "failed to persist token",
				"identity", email, "error", err)
		}

		m.mu.Lock()
		if m.identity == email {
			m.token = token
			m.loaded = true
		}
		m.mu.Unlock()

		return token, nil
	})
	if err != nil {
		return "", fmt.Errorf("login for %s failed: %w", email, err)
	}
	return result.(string), nil
}

// invalidateLocked discards all cached token state and re-keys the cache to
// the given identity. Callers must hold m.mu.
func (m *Manager) invalidateLocked(identity string) {
	m.identity = identity
	m.token = ""
	m.loaded = false
	m.direct = false
}

// Reset clears all cached session state, returning the manager to its
// initial condition.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.invalidateLocked("")
	m.mu.Unlock()
}
