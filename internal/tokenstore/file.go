package tokenstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// record is the on-disk shape of a persisted token.
type record struct {
	Token     string    `json:"token"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileStore keeps one JSON record per identity in a directory. Writes use
// temp file + rename for crash safety and 0600 permissions.
type FileStore struct {
	dir string
}

// Compile-time check to ensure FileStore implements Store
var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir, creating it with 0700
// permissions if it does not exist.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	return &FileStore{dir: dir}, nil
}

// path derives the record location for an identity. The identity is encoded
// so arbitrary strings (email addresses included) produce a safe file name.
func (f *FileStore) path(identity string) string {
	name := base64.RawURLEncoding.EncodeToString([]byte(identity))
	return filepath.Join(f.dir, name+".json")
}

// Read returns the token stored for identity, or the empty string when no
// record exists. A record that exists but cannot be parsed is an error, not
// an absent token: that is plausibly corruption worth surfacing.
func (f *FileStore) Read(ctx context.Context, identity string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if identity == "" {
		return "", nil
	}

	data, err := os.ReadFile(f.path(identity))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("corrupt token record for %s: %w", identity, err)
	}
	return rec.Token, nil
}

// Write persists the token for identity with an updated timestamp. A no-op
// when identity or token is empty.
func (f *FileStore) Write(ctx context.Context, identity, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if identity == "" || token == "" {
		return nil
	}

	data, err := json.Marshal(record{Token: token, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	// Secure temp file in the same directory for atomic rename
	tempFile, err := os.CreateTemp(f.dir, "*.tmp")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()
	// Cleanup deferred for all exit paths
	defer func() { _ = os.Remove(tempName) }()
	defer func() { _ = tempFile.Close() }()

	if _, err := tempFile.Write(data); err != nil {
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tempName, 0600); err != nil {
		return err
	}

	return os.Rename(tempName, f.path(identity))
}

// Delete removes the record for identity. Absent records are not an error.
func (f *FileStore) Delete(ctx context.Context, identity string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if identity == "" {
		return nil
	}

	if err := os.Remove(f.path(identity)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
