package config

const (
	defaultWatchDir     = "~/.local/share/hopper/incoming"
	defaultArchiveDir   = "~/.local/share/hopper/archive"
	defaultLogDir       = "~/.local/share/hopper/logs"
	defaultWatchPattern = "*.txt"
	defaultMaxAttempts  = 5
	defaultRetryDelayMS = 5000
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"

	// ProcessingModeCopy archives each stabilized file with a verified copy.
	ProcessingModeCopy = "copy"
	// ProcessingModeCommand runs a configured command for each stabilized file.
	ProcessingModeCommand = "command"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WatchDir:   defaultWatchDir,
			ArchiveDir: defaultArchiveDir,
			LogDir:     defaultLogDir,
		},
		Watch: Watch{
			Pattern:     defaultWatchPattern,
			Recursive:   false,
			ScanOnStart: true,
		},
		Stability: Stability{
			MaxAttempts:  defaultMaxAttempts,
			RetryDelayMS: defaultRetryDelayMS,
		},
		Processing: Processing{
			Mode: ProcessingModeCopy,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Completions:    false,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
