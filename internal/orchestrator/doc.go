// Package orchestrator runs one batch session from the host side.
//
// Run saves the settings snapshot, launches the worker with the generated
// command line, and polls the worker's stdout and stderr on a fixed interval
// until the process has exited and both streams are drained. Every line is
// passed to a Viewer: protocol lines as written by the worker, anything else
// stamped and labelled as host output. When the session ends the worker's
// structured log is read back as plain text.
//
// A cancelled context terminates the worker. Output already produced is
// drained for a bounded grace period before the session is closed.
package orchestrator
