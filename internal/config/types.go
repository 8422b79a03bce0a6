package config

import "time"

// Config is the orchestrator configuration read from config.yaml.
type Config struct {
	Worker WorkerConfig `yaml:"worker"`

	// SettingsFile is the settings file handed to the worker. Empty means
	// the per-user default location.
	SettingsFile string `yaml:"settingsFile,omitempty"`
	// LogFolder receives session logs. Empty means <config dir>/logs.
	LogFolder string `yaml:"logFolder,omitempty"`

	PollIntervalMs int `yaml:"pollIntervalMs,omitempty"`
	DrainGraceMs   int `yaml:"drainGraceMs,omitempty"`

	// LogLevel is the diagnostic log level: debug, info, warn or error.
	LogLevel string `yaml:"logLevel,omitempty"`
}

// WorkerConfig describes how to launch the worker process.
type WorkerConfig struct {
	// Executable is the worker binary. Empty means the running executable,
	// started with the "worker" subcommand.
	Executable string `yaml:"executable,omitempty"`
	// Args are passed before the generated options.
	Args             []string `yaml:"args,omitempty"`
	WorkingDirectory string   `yaml:"workingDirectory,omitempty"`
}

// PollInterval returns the stdio polling interval.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// DrainGrace returns how long output is drained after terminating the worker.
func (c Config) DrainGrace() time.Duration {
	return time.Duration(c.DrainGraceMs) * time.Millisecond
}
