package config

const (
	defaultSourceLog     = "/var/log/spi/spi_log.his"
	defaultDataDir       = "~/.local/share/pcbwatch"
	defaultLogDir        = "~/.local/share/pcbwatch/logs"
	defaultSettleDelayMS = 500
	defaultWatchMode     = "notify"
	defaultPollInterval  = 2
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"

	// DefaultPrimaryPattern captures the first digit run after a "PCB"
	// marker anywhere on the line. Matching is case-insensitive.
	DefaultPrimaryPattern = `(?i)PCB.*?(\d+)`
	// DefaultFallbackPattern is the looser mixed-case variant tried when
	// the primary pattern produces no matches at all.
	DefaultFallbackPattern = `[Pp][Cc][Bb].*?(\d+)`
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceLog: defaultSourceLog,
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
		},
		Processing: Processing{
			SettleDelayMS:   defaultSettleDelayMS,
			WatchMode:       defaultWatchMode,
			PollInterval:    defaultPollInterval,
			PrimaryPattern:  DefaultPrimaryPattern,
			FallbackPattern: DefaultFallbackPattern,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
