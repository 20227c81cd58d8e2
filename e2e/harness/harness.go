// Package harness provides E2E testing utilities for feedsync.
package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/artpar/feedsync/e2e/testserver"
	"github.com/artpar/feedsync/internal/config"
)

// E2EHarness is the main test orchestrator.
type E2EHarness struct {
	t         *testing.T
	server    *testserver.Server
	tmpDir    string
	goldenDir string
	timeout   time.Duration
}

// Config configures the harness.
type Config struct {
	ServerOptions []testserver.Option
	GoldenDir     string
	Timeout       time.Duration // Default: 5 seconds
	// NoAccount skips writing the config file.
	NoAccount bool
}

// New creates a new E2E harness with a fake News server and a config file
// pointing at it.
func New(t *testing.T, cfg Config) *E2EHarness {
	t.Helper()

	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	h := &E2EHarness{
		t:         t,
		goldenDir: cfg.GoldenDir,
		timeout:   cfg.Timeout,
	}

	tmpDir, err := os.MkdirTemp("", "feedsync-e2e-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	h.tmpDir = tmpDir
	t.Setenv("HOME", tmpDir)

	h.server = testserver.New(cfg.ServerOptions...)

	if !cfg.NoAccount {
		if err := config.Save(h.ConfigPath(), &config.Config{Account: *h.server.Account()}); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
	}

	t.Cleanup(h.cleanup)
	return h
}

func (h *E2EHarness) cleanup() {
	h.server.Close()
	os.RemoveAll(h.tmpDir)
}

// Server returns the fake News server.
func (h *E2EHarness) Server() *testserver.Server {
	return h.server
}

// TmpDir returns the temporary directory path.
func (h *E2EHarness) TmpDir() string {
	return h.tmpDir
}

// ConfigPath is the config file passed to every command.
func (h *E2EHarness) ConfigPath() string {
	return filepath.Join(h.tmpDir, "feedsync.yaml")
}

// DatabasePath is the cache database passed to every command.
func (h *E2EHarness) DatabasePath() string {
	return filepath.Join(h.tmpDir, "feedsync.db")
}

// Timeout returns the configured timeout.
func (h *E2EHarness) Timeout() time.Duration {
	return h.timeout
}

// T returns the testing.T instance.
func (h *E2EHarness) T() *testing.T {
	return h.t
}

// CLI returns a CLI runner for this harness.
func (h *E2EHarness) CLI() *CLIRunner {
	return &CLIRunner{harness: h}
}

// Golden returns a golden file manager for this harness.
func (h *E2EHarness) Golden() *GoldenManager {
	return NewGoldenManager(h.goldenDir)
}
