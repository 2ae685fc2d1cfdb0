package config

import (
	"errors"
	"fmt"
	"regexp"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateProcessing(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.SourceLog == "" {
		return errors.New("paths.source_log must be set")
	}
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.SourceLog == c.SnapshotPath() {
		return errors.New("paths.source_log must not collide with the snapshot location")
	}
	return nil
}

func (c *Config) validateProcessing() error {
	switch c.Processing.WatchMode {
	case "notify", "poll":
	default:
		return fmt.Errorf("processing.watch_mode must be \"notify\" or \"poll\", got %q", c.Processing.WatchMode)
	}
	if c.Processing.SettleDelayMS < 0 {
		return errors.New("processing.settle_delay_ms must not be negative")
	}
	if c.Processing.PollInterval <= 0 {
		return errors.New("processing.poll_interval must be positive")
	}
	if _, err := regexp.Compile(c.Processing.PrimaryPattern); err != nil {
		return fmt.Errorf("processing.primary_pattern: %w", err)
	}
	if _, err := regexp.Compile(c.Processing.FallbackPattern); err != nil {
		return fmt.Errorf("processing.fallback_pattern: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
