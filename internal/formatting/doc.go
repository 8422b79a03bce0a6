// Package formatting renders command results as rounded tables, JSON or
// YAML, selected by the --output flag of the CLI.
package formatting
