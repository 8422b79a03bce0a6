package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"batchrvt/internal/options"
	"batchrvt/internal/settings"
)

// ErrNoSettings is returned when CommandData carries no settings.
var ErrNoSettings = errors.New("no settings supplied")

// SettingsError lists the problems that stopped a session from starting.
type SettingsError struct {
	Problems []string
}

func (e *SettingsError) Error() string {
	return "settings are not valid: " + strings.Join(e.Problems, "; ")
}

// CommandData is everything the orchestrator hands to one worker session.
type CommandData struct {
	Settings         *settings.BatchSettings
	SettingsFilePath string
	LogFolder        string
	SessionID        string
	TaskData         string
	TestModeFolder   string

	// GeneratedLogFilePath is filled in by Run once the worker is launched.
	GeneratedLogFilePath string
}

// Pairs returns the worker options for d. Empty optional values are left out.
func (d *CommandData) Pairs() []options.Pair {
	pairs := []options.Pair{
		{Name: options.SettingsFile, Value: d.SettingsFilePath},
		{Name: options.LogFolder, Value: d.LogFolder},
		{Name: options.SessionID, Value: d.SessionID},
	}
	if d.TaskData != "" {
		pairs = append(pairs, options.Pair{Name: options.TaskData, Value: d.TaskData})
	}
	if d.TestModeFolder != "" {
		pairs = append(pairs, options.Pair{Name: options.TestModeFolderPath, Value: d.TestModeFolder})
	}
	return pairs
}

// CommandLine renders the worker options as a single command-line string.
func (d *CommandData) CommandLine() (string, error) {
	line, err := options.ConstructCommandLineArguments(d.Pairs())
	if err != nil {
		return "", fmt.Errorf("failed to build worker command line: %w", err)
	}
	return line, nil
}
