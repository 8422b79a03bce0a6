package config

import (
	"fmt"
	"strings"
)

// ConfigurationError describes a config.yaml that could not be used.
type ConfigurationError struct {
	FilePath    string
	ErrorType   string // io, parse or validation
	Message     string
	Suggestions []string
}

// Error implements the error interface
func (ce ConfigurationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ce.ErrorType, ce.FilePath, ce.Message)
}

// DetailedError returns a multi-line message including suggestions.
func (ce ConfigurationError) DetailedError() string {
	parts := []string{
		fmt.Sprintf("Configuration Error in %s", ce.FilePath),
		fmt.Sprintf("  Type: %s", ce.ErrorType),
		fmt.Sprintf("  Error: %s", ce.Message),
	}
	if len(ce.Suggestions) > 0 {
		parts = append(parts, "  Suggestions:")
		for _, suggestion := range ce.Suggestions {
			parts = append(parts, fmt.Sprintf("    - %s", suggestion))
		}
	}
	return strings.Join(parts, "\n")
}

// ValidationErrors collects every problem found in one configuration.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	if len(v) == 1 {
		return v[0]
	}
	return fmt.Sprintf("%d configuration problems: %s", len(v), strings.Join(v, "; "))
}
