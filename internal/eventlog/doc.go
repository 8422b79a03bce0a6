// Package eventlog writes and reads the structured session log.
//
// A session log is newline-delimited JSON. Every line is an Entry carrying
// the local and UTC date and time, the session identifier and an arbitrary
// JSON payload; lines are only ever appended. Writer never lets a logging
// failure escape into the caller: it reports a boolean instead.
//
// ReadLinesAsPlainText projects a log into "<date> <time> : <message>" lines
// for review. Lines that are not entries pass through unchanged, so a log with
// damaged lines can still be read.
package eventlog
