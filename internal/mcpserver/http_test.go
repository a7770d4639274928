package mcpserver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartHTTPAndShutdown(t *testing.T) {
	stub := newAPIStub(t)
	server, _ := newTestServer(t, stub, map[string]string{})

	errCh, err := server.StartHTTP(context.Background(), "127.0.0.1:0")
	require.NoError(t, err)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(shutdownCtx))

	// Graceful shutdown must not surface as a runtime error.
	select {
	case err, ok := <-errCh:
		if ok {
			t.Fatalf("runtime error after graceful shutdown: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("error channel not closed after shutdown")
	}
}

func TestStartHTTPPortInUse(t *testing.T) {
	stub := newAPIStub(t)
	server, _ := newTestServer(t, stub, map[string]string{})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = listener.Close() }()

	_, err = server.StartHTTP(context.Background(), listener.Addr().String())
	assert.Error(t, err, "binding an occupied port must fail at startup")
}

func TestShutdownWithoutStartIsNoop(t *testing.T) {
	stub := newAPIStub(t)
	server, _ := newTestServer(t, stub, map[string]string{})

	assert.NoError(t, server.Shutdown(context.Background()))
}
