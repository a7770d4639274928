package tokenstore

import "context"

// Store reads and writes per-identity tokens in persistent storage.
//
// No concurrency control is provided beyond what the backend guarantees:
// concurrent writers for the same identity race and the last writer wins,
// which is acceptable for a single local process per credential set.
type Store interface {
	// Read returns the stored token for identity, or the empty string
	// when no record exists. Any other storage failure (permissions,
	// corrupt record) is returned as an error.
	Read(ctx context.Context, identity string) (string, error)

	// Write persists the token for identity, creating the storage
	// location if needed. A no-op when identity or token is empty.
	Write(ctx context.Context, identity, token string) error

	// Delete removes the record for identity. Deleting a record that
	// does not exist is not an error.
	Delete(ctx context.Context, identity string) error
}
