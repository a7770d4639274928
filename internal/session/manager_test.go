package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ferdhika31/moneylover-mcp/internal/credentials"
)

// fakeStore is an in-memory token store with call counters and injectable
// failures.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]string

	reads, writes, deletes int

	readErr, writeErr, deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]string{}}
}

func (f *fakeStore) Read(ctx context.Context, identity string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.readErr != nil {
		return "", f.readErr
	}
	return f.records[identity], nil
}

func (f *fakeStore) Write(ctx context.Context, identity, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	if identity == "" || token == "" {
		return nil
	}
	f.records[identity] = token
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, identity string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.records, identity)
	return nil
}

func (f *fakeStore) get(identity string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[identity]
}

// fakeAuth counts credential exchanges and mints a distinct token per call.
// When release is non-nil, exchanges block until it is closed.
type fakeAuth struct {
	mu    sync.Mutex
	calls int
	err   error

	entered chan struct{}
	release chan struct{}
}

func (f *fakeAuth) ExchangeCredentials(ctx context.Context, email, password string) (string, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}

	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("minted-%s-%d", email, call), nil
}

func (f *fakeAuth) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// testManager builds a Manager over a mutable configuration map.
func testManager(t *testing.T, values map[string]string, store *fakeStore, auth *fakeAuth) *Manager {
	t.Helper()
	resolver := credentials.NewResolver(func(key string) string {
		return values[key]
	})
	manager, err := NewManager(resolver, store, auth)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return manager
}

func identityValues() map[string]string {
	return map[string]string{
		credentials.KeyEmail:    "user@example.com",
		credentials.KeyPassword: "hunter2",
	}
}

func TestDirectTokenShortCircuits(t *testing.T) {
	values := map[string]string{
		credentials.KeyToken:    "direct-tok",
		credentials.KeyEmail:    "user@example.com",
		credentials.KeyPassword: "hunter2",
	}
	store := newFakeStore()
	auth := &fakeAuth{}
	manager := testManager(t, values, store, auth)
	ctx := context.Background()

	for _, force := range []bool{false, true} {
		token, err := manager.Token(ctx, force)
		if err != nil {
			t.Fatalf("Token(force=%v) error = %v", force, err)
		}
		if token != "direct-tok" {
			t.Errorf("Token(force=%v) = %q, want direct-tok", force, token)
		}
	}

	if auth.callCount() != 0 {
		t.Errorf("exchange invoked %d times, want 0 for direct token", auth.callCount())
	}
	if store.reads != 0 || store.writes != 0 || store.deletes != 0 {
		t.Errorf("store touched (r=%d w=%d d=%d), want untouched for direct token",
			store.reads, store.writes, store.deletes)
	}
}

func TestLoginExchangesOnceAndPersists(t *testing.T) {
	values := identityValues()
	store := newFakeStore()
	auth := &fakeAuth{}
	manager := testManager(t, values, store, auth)
	ctx := context.Background()

	token, err := manager.Token(ctx, false)
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token != "minted-user@example.com-1" {
		t.Errorf("Token() = %q, want freshly minted token", token)
	}
	if got := store.get("user@example.com"); got != token {
		t.Errorf("persisted token = %q, want %q", got, token)
	}

	// Second call is served from memory: no new exchange, no new read.
	again, err := manager.Token(ctx, false)
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if again != token {
		t.Errorf("second Token() = %q, want cached %q", again, token)
	}
	if auth.callCount() != 1 {
		t.Errorf("exchange invoked %d times, want 1", auth.callCount())
	}
	if store.reads != 1 {
		t.Errorf("store read %d times, want 1 (read-through once per identity)", store.reads)
	}
}

func TestConcurrentCallersShareOneExchange(t *testing.T) {
	values := identityValues()
	store := newFakeStore()
	auth := &fakeAuth{
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	manager := testManager(t, values, store, auth)
	ctx := context.Background()

	results := make(chan string, 2)
	errs := make(chan error, 2)
	for range 2 {
		go func() {
			token, err := manager.Token(ctx, false)
			results <- token
			errs <- err
		}()
	}

	// Wait for the first caller to enter the exchange, give the second
	// caller time to join the same flight, then let the exchange finish.
	<-auth.entered
	time.Sleep(50 * time.Millisecond)
	close(auth.release)

	first, second := <-results, <-results
	if err := errors.Join(<-errs, <-errs); err != nil {
		t.Fatalf("Token() error = %v", err)
	}

	if first != second {
		t.Errorf("concurrent callers got different tokens: %q vs %q", first, second)
	}
	if auth.callCount() != 1 {
		t.Errorf("exchange invoked %d times, want 1 (single-flight)", auth.callCount())
	}
}

func TestStoredTokenUsedWithoutLogin(t *testing.T) {
	values := identityValues()
	store := newFakeStore()
	store.records["user@example.com"] = "stored-tok"
	auth := &fakeAuth{}
	manager := testManager(t, values, store, auth)

	token, err := manager.Token(context.Background(), false)
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token != "stored-tok" {
		t.Errorf("Token() = %q, want stored-tok", token)
	}
	if auth.callCount() != 0 {
		t.Errorf("exchange invoked %d times, want 0 with a stored token", auth.callCount())
	}
}

func TestForceRefreshDeletesRecordAndReauthenticates(t *testing.T) {
	values := identityValues()
	store := newFakeStore()
	store.records["user@example.com"] = "stale-tok"
	auth := &fakeAuth{}
	manager := testManager(t, values, store, auth)
	ctx := context.Background()

	if token, _ := manager.Token(ctx, false); token != "stale-tok" {
		t.Fatalf("Token() = %q, want stale-tok before refresh", token)
	}

	fresh, err := manager.Token(ctx, true)
	if err != nil {
		t.Fatalf("Token(force) error = %v", err)
	}
	if fresh == "stale-tok" {
		t.Error("Token(force) returned the stale token")
	}
	if store.deletes != 1 {
		t.Errorf("store deletes = %d, want 1 (stale record removed before re-auth)", store.deletes)
	}
	if auth.callCount() != 1 {
		t.Errorf("exchange invoked %d times, want 1", auth.callCount())
	}
	if got := store.get("user@example.com"); got != fresh {
		t.Errorf("persisted token = %q, want refreshed %q", got, fresh)
	}
}

func TestForceRefreshDeleteFailureIsNonFatal(t *testing.T) {
	values := identityValues()
	store := newFakeStore()
	store.deleteErr = errors.New("disk on fire")
	auth := &fakeAuth{}
	manager := testManager(t, values, store, auth)

	token, err := manager.Token(context.Background(), true)
	if err != nil {
		t.Fatalf("Token(force) error = %v, want nil despite delete failure", err)
	}
	if token == "" {
		t.Error("Token(force) = empty, want minted token")
	}
}

func TestPersistFailureDoesNotInvalidateToken(t *testing.T) {
	values := identityValues()
	store := newFakeStore()
	store.writeErr = errors.New("read-only filesystem")
	auth := &fakeAuth{}
	manager := testManager(t, values, store, auth)

	token, err := manager.Token(context.Background(), false)
	if err != nil {
		t.Fatalf("Token() error = %v, want nil despite persist failure", err)
	}
	if token == "" {
		t.Error("Token() = empty, want minted token")
	}
}

func TestIdentityChangeInvalidatesCache(t *testing.T) {
	values := identityValues()
	store := newFakeStore()
	auth := &fakeAuth{}
	manager := testManager(t, values, store, auth)
	ctx := context.Background()

	first, err := manager.Token(ctx, false)
	if err != nil {
		t.Fatal(err)
	}

	values[credentials.KeyEmail] = "other@example.com"
	second, err := manager.Token(ctx, false)
	if err != nil {
		t.Fatal(err)
	}

	if first == second {
		t.Error("identity change returned the previous identity's token")
	}
	if auth.callCount() != 2 {
		t.Errorf("exchange invoked %d times, want 2 (one per identity)", auth.callCount())
	}
	if got := store.get("other@example.com"); got != second {
		t.Errorf("persisted token for new identity = %q, want %q", got, second)
	}
}

func TestDirectTokenRemovalInvalidatesCache(t *testing.T) {
	values := identityValues()
	values[credentials.KeyToken] = "direct-tok"
	store := newFakeStore()
	auth := &fakeAuth{}
	manager := testManager(t, values, store, auth)
	ctx := context.Background()

	if token, _ := manager.Token(ctx, false); token != "direct-tok" {
		t.Fatalf("Token() = %q, want direct-tok", token)
	}

	// Direct token source disappears; the cached direct token must not
	// leak into the credential-based path.
	delete(values, credentials.KeyToken)
	token, err := manager.Token(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if token == "direct-tok" {
		t.Error("stale direct token returned after its source disappeared")
	}
	if auth.callCount() != 1 {
		t.Errorf("exchange invoked %d times, want 1", auth.callCount())
	}
}

func TestNoCredentialsYieldsEmptyTokenWithoutError(t *testing.T) {
	manager := testManager(t, map[string]string{}, newFakeStore(), &fakeAuth{})

	token, err := manager.Token(context.Background(), false)
	if err != nil {
		t.Fatalf("Token() error = %v, want nil (absence is not an error here)", err)
	}
	if token != "" {
		t.Errorf("Token() = %q, want empty", token)
	}
}

func TestExchangeFailureClearsPendingForRetry(t *testing.T) {
	values := identityValues()
	store := newFakeStore()
	auth := &fakeAuth{err: errors.New("bad credentials")}
	manager := testManager(t, values, store, auth)
	ctx := context.Background()

	if _, err := manager.Token(ctx, false); err == nil {
		t.Fatal("Token() error = nil, want exchange failure")
	}

	// A later call starts a fresh exchange rather than reusing the
	// failed flight.
	auth.err = nil
	token, err := manager.Token(ctx, false)
	if err != nil {
		t.Fatalf("Token() after failure error = %v", err)
	}
	if token == "" {
		t.Error("Token() = empty after recovery")
	}
	if auth.callCount() != 2 {
		t.Errorf("exchange invoked %d times, want 2", auth.callCount())
	}
}

func TestStoreReadErrorIsFatal(t *testing.T) {
	values := identityValues()
	store := newFakeStore()
	store.readErr = errors.New("permission denied")
	manager := testManager(t, values, store, &fakeAuth{})

	if _, err := manager.Token(context.Background(), false); err == nil {
		t.Fatal("Token() error = nil, want store read failure to propagate")
	}
}

func TestResetClearsCachedState(t *testing.T) {
	values := identityValues()
	store := newFakeStore()
	auth := &fakeAuth{}
	manager := testManager(t, values, store, auth)
	ctx := context.Background()

	if _, err := manager.Token(ctx, false); err != nil {
		t.Fatal(err)
	}
	manager.Reset()

	// After reset the store is consulted again (read-through restarts).
	if _, err := manager.Token(ctx, false); err != nil {
		t.Fatal(err)
	}
	if store.reads != 2 {
		t.Errorf("store reads = %d, want 2 after reset", store.reads)
	}
}
