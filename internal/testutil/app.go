// Package testutil starts real pasosync servers for tests.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/thenoetrevino/pasosync/internal/app"
	"github.com/thenoetrevino/pasosync/internal/daemon"
	"github.com/thenoetrevino/pasosync/internal/database"
)

// DiscardLogger returns a logger that drops everything
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// StartApp runs the full server over an in-memory database behind httptest.
// The heartbeat is effectively disabled so slow tests are never evicted.
// Cleanup is automatic via t.Cleanup().
func StartApp(t *testing.T) (*app.App, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	a, err := app.New(ctx, database.MemoryPath,
		app.WithLogger(DiscardLogger()),
		app.WithServerOptions(daemon.Options{HeartbeatInterval: time.Hour}),
	)
	if err != nil {
		cancel()
		t.Fatalf("Failed to start app: %v", err)
	}

	ts := httptest.NewServer(a.Handler())
	go func() { _ = a.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		ts.Close()
		if err := a.Close(); err != nil {
			t.Logf("Warning: app close error during cleanup: %v", err)
		}
	})
	return a, ts
}

// WSURL returns the sync endpoint of a server started by StartApp
func WSURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}
