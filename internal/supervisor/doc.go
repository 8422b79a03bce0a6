// Package supervisor launches the worker process and drains its output
// without ever blocking the caller.
//
// # Draining
//
// Each redirected stream is read through a LineReader. PollAvailableLines
// keeps exactly one "read next line" operation in flight per stream and only
// collects reads that have already completed; the read that is still waiting
// for data is returned as a PendingRead and must be passed to the next poll.
// Threading the continuation this way delivers every line once, in order,
// regardless of how the child's writes are chunked across polls.
//
// # Lifecycle
//
// A Session moves from NotStarted to Running to Exited. Exit is observed by
// polling IsExited; output can trail the exit, so callers keep polling until
// Drained reports that both streams have ended.
//
// # Classification
//
// Lines written by the worker start with an hh:mm:ss timestamp
// (IsProtocolLine). DisplayLine stamps everything else with the
// orchestrator's clock so foreign output is never mistaken for worker output.
package supervisor
