// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"pcbwatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// The source log path points into the temp tree but is not created; tests
// write it when they need one.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceLog = filepath.Join(base, "spi_log.his")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Processing.SettleDelayMS = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithWatchMode overrides the watch mode on the test config.
func WithWatchMode(mode string) ConfigOption {
	return func(c *config.Config) {
		c.Processing.WatchMode = mode
	}
}

// WithPatterns overrides the extraction pattern pair.
func WithPatterns(primary, fallback string) ConfigOption {
	return func(c *config.Config) {
		c.Processing.PrimaryPattern = primary
		c.Processing.FallbackPattern = fallback
	}
}

// WithSettleDelayMS overrides the settle delay.
func WithSettleDelayMS(ms int) ConfigOption {
	return func(c *config.Config) {
		c.Processing.SettleDelayMS = ms
	}
}
