// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jrschumacher/lockflow/internal/config"
	"github.com/jrschumacher/lockflow/internal/db"
)

// TestConfig returns a valid configuration for an in-memory database and a
// loopback receiver on a random port.
func TestConfig() *config.Config {
	return &config.Config{
		AppEnv:       config.EnvTest,
		ClientID:     "Client",
		AuthorizeURL: "https://tenant.auth0.com/authorize",
		ResponseType: "token",
		Scope:        "openid",
		NonceSource:  "uuid",
		CallbackAddr: "127.0.0.1:0",
		CallbackPath: "/callback",
		DatabaseURL:  ":memory:",
		LogLevel:     "INFO",
		LogFormat:    "text",
	}
}

// TestDatabase creates a migrated in-memory SQLite database for testing
func TestDatabase(t *testing.T) *db.Service {
	t.Helper()

	dbService, err := db.NewService(context.Background(), TestConfig())
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if err := dbService.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})

	return dbService
}

// TestServer creates a test HTTP server - handler should be set up by the test
func TestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(func() {
		server.Close()
	})

	return server
}

// MustParseURL parses raw or fails the test.
func MustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("Failed to parse %q: %v", raw, err)
	}
	return u
}
