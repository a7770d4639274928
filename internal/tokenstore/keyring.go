package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringStore keeps per-identity tokens in the OS-native credential
// storage (macOS Keychain, Windows Credential Manager, Linux Secret
// Service). The identity doubles as the keyring user.
type KeyringStore struct {
	service string
}

// Compile-time check to ensure KeyringStore implements Store
var _ Store = (*KeyringStore)(nil)

// NewKeyringStore creates a KeyringStore under the given service name.
func NewKeyringStore(service string) (*KeyringStore, error) {
	if service == "" {
		return nil, fmt.Errorf("service cannot be empty")
	}

	return &KeyringStore{service: service}, nil
}

// Read returns the token stored for identity, or the empty string when the
// keyring has no entry for it.
func (k *KeyringStore) Read(ctx context.Context, identity string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if identity == "" {
		return "", nil
	}

	token, err := keyring.Get(k.service, identity)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

// Write persists the token for identity, overwriting any existing entry.
// A no-op when identity or token is empty.
func (k *KeyringStore) Write(ctx context.Context, identity, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if identity == "" || token == "" {
		return nil
	}

	return keyring.Set(k.service, identity, token)
}

// Delete removes the entry for identity. Absent entries are not an error.
func (k *KeyringStore) Delete(ctx context.Context, identity string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if identity == "" {
		return nil
	}

	if err := keyring.Delete(k.service, identity); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
