// Shared test setup utilities: an App wired from in-memory components and a
// full api.Server for integration tests.

package testutil

import (
	"database/sql"
	"testing"

	"github.com/prospectr/prospectr-go/internal/api"
	"github.com/prospectr/prospectr-go/internal/config"
	"github.com/prospectr/prospectr-go/internal/core"
	"github.com/prospectr/prospectr-go/internal/extractor"
	"github.com/prospectr/prospectr-go/internal/extractor/providers"
	"github.com/prospectr/prospectr-go/internal/extractor/providers/mockprofile"
	"github.com/prospectr/prospectr-go/internal/websocket"
)

// TestConfig returns a config with temp directories and delays shrunk to
// keep the extraction loop fast under test.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Database.Path = ":memory:"
	cfg.Uploads.Path = t.TempDir()
	cfg.Exports.Path = t.TempDir()
	cfg.Exports.RetentionDays = 30
	cfg.Extractor.DefaultProvider = "mockprofile"
	cfg.Extractor.BatchSize = 2
	cfg.Extractor.ItemDelayMs = 1
	cfg.Extractor.BatchDelayMs = 1
	cfg.Extractor.RetryBackoffMs = 1
	cfg.Extractor.MaxAttempts = 3
	cfg.Extractor.PollIntervalMs = 10
	return cfg
}

// SetupTestApp wires a core.App from an in-memory database and a running
// websocket hub, and registers the mock provider.
func SetupTestApp(t *testing.T) *core.App {
	t.Helper()
	database := SetupTestDB(t)

	hub := websocket.NewHub()
	go hub.Run()
	app := core.NewWithComponents(TestConfig(t), database, hub, "test")

	t.Cleanup(func() {
		providers.UnregisterAll()
	})

	// Register providers for the test environment
	providers.Register(mockprofile.New())
	return app
}

// SetupTestServer initializes a full core.App and api.Server for integration
// testing. The extraction runner is wired but not started; tests that need
// the queue loop call Start themselves.
func SetupTestServer(t *testing.T) (*api.Server, *sql.DB) {
	t.Helper()
	app := SetupTestApp(t)
	runner := extractor.NewRunner(app)
	server := api.NewServer(app, runner)
	return server, app.DB()
}
