package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ferdhika31/moneylover-mcp/internal/credentials"
	"github.com/ferdhika31/moneylover-mcp/internal/moneylover"
)

// ErrCredentialsRequired is returned when an operation needs a token but no
// credential source is configured. The message names every accepted source.
var ErrCredentialsRequired = fmt.Errorf(
	"access token required: set %s and %s, provide a token via %s or %s, or pass an explicit token argument",
	credentials.KeyEmail, credentials.KeyPassword,
	credentials.KeyAccessToken, credentials.KeyToken,
)

// Operation is a remote API call parameterized by the access token it
// authenticates with.
type Operation[T any] func(ctx context.Context, token string) (T, error)

// Run executes op with a usable token.
//
// A non-empty explicit token (after trimming) bypasses the lifecycle
// manager entirely; the caller owns that token's validity and no
// refresh-on-failure applies. Otherwise the manager supplies the token, and
// an authentication-classified failure triggers exactly one forced refresh
// and one retry. If re-authentication fails, the original error is
// re-raised to preserve the caller's failure context.
func Run[T any](ctx context.Context, manager *Manager, explicitToken string, op Operation[T]) (T, error) {
	var zero T

	if token := strings.TrimSpace(explicitToken); token != "" {
		return op(ctx, token)
	}

	token, err := manager.Token(ctx, false)
	if err != nil {
		return zero, err
	}
	if token == "" {
		return zero, ErrCredentialsRequired
	}

	result, err := op(ctx, token)
	if err == nil || !moneylover.IsAuthError(err) {
		return result, err
	}

	slog.InfoContext(ctx, "authentication failure, refreshing token", "error", err)

	fresh, refreshErr := manager.Token(ctx, true)
	if refreshErr != nil || fresh == "" {
		if refreshErr != nil {
			slog.WarnContext(ctx, "token refresh failed", "error", refreshErr)
		}
		return zero, err
	}

	return op(ctx, fresh)
}
