// Package worker is the child process side of a batch run.
//
// The orchestrator launches the worker with the option vocabulary from
// package options. The worker validates its command line, loads the
// settings file and then reports its progress twice: as protocol lines on
// stdout (hh:mm:ss : message), which the orchestrator shows verbatim, and as
// structured entries in the session log.
//
// Opening files in the host application is not done here. Each file of the
// list is resolved and reported so the whole pipeline can be exercised end
// to end.
package worker
