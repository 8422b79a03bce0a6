// Package logging provides the diagnostic logger used across batchrvt.
//
// It is a thin layer over log/slog that tags every record with a subsystem
// name so output from the orchestrator, the supervisor and the worker can be
// told apart:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Supervisor", "started worker pid=%d", pid)
//	logging.Debug("Settings", "loaded %s", path)
//	logging.Error("Orchestrator", err, "failed to save settings file")
//
// Diagnostic logging is distinct from the structured session log written by
// package eventlog. The session log is a product of a batch run; these records
// are for whoever operates the tool.
//
// Logging before InitForCLI drops debug and info records and writes warnings
// and errors to stderr.
package logging
