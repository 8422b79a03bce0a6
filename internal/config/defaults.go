package config

const (
	// DefaultPollIntervalMs is the stdio polling interval.
	DefaultPollIntervalMs = 50
	// DefaultDrainGraceMs bounds output draining after a forced termination.
	DefaultDrainGraceMs = 2000
	// DefaultLogLevel is the diagnostic log level.
	DefaultLogLevel = "warn"
)

// GetDefaultConfig returns the configuration used when no file is present.
func GetDefaultConfig() Config {
	return Config{
		PollIntervalMs: DefaultPollIntervalMs,
		DrainGraceMs:   DefaultDrainGraceMs,
		LogLevel:       DefaultLogLevel,
	}
}
