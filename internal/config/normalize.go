package config

import "strings"

// normalize expands path fields and fills blank values with defaults so the
// rest of the system never re-checks for empty configuration.
func (c *Config) normalize() error {
	defaults := Default()

	if strings.TrimSpace(c.Paths.SourceLog) == "" {
		c.Paths.SourceLog = defaults.Paths.SourceLog
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaults.Paths.DataDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaults.Paths.LogDir
	}

	for _, field := range []*string{&c.Paths.SourceLog, &c.Paths.DataDir, &c.Paths.LogDir} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Processing.WatchMode = strings.ToLower(strings.TrimSpace(c.Processing.WatchMode))
	if c.Processing.WatchMode == "" {
		c.Processing.WatchMode = defaults.Processing.WatchMode
	}
	if c.Processing.SettleDelayMS == 0 {
		c.Processing.SettleDelayMS = defaults.Processing.SettleDelayMS
	}
	if c.Processing.PollInterval == 0 {
		c.Processing.PollInterval = defaults.Processing.PollInterval
	}
	if strings.TrimSpace(c.Processing.PrimaryPattern) == "" {
		c.Processing.PrimaryPattern = defaults.Processing.PrimaryPattern
	}
	if strings.TrimSpace(c.Processing.FallbackPattern) == "" {
		c.Processing.FallbackPattern = defaults.Processing.FallbackPattern
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}

	return nil
}
