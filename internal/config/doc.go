// Package config loads the orchestrator's own configuration.
//
// Configuration lives in config.yaml inside a single directory, by default
// ~/.config/batchrvt; commands accept --config-path to point elsewhere.
// A missing file means defaults. A file that cannot be read, parsed or
// validated is reported as a ConfigurationError.
//
//	worker:
//	  executable: /opt/batchrvt/worker
//	  workingDirectory: /srv/jobs
//	settingsFile: /srv/jobs/BatchRvt.Settings.json
//	logFolder: /srv/jobs/logs
//	pollIntervalMs: 50
//	drainGraceMs: 2000
//	logLevel: warn
//
// This is separate from the batch settings document (package settings),
// which is what the worker consumes.
package config
