package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"batchrvt/internal/config"
	"batchrvt/internal/orchestrator"
	"batchrvt/internal/supervisor"
	"batchrvt/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeInvalidSettings indicates the settings document failed validation.
	ExitCodeInvalidSettings = 2
	// ExitCodeWorkerFailed indicates the worker exited with a non-zero code.
	ExitCodeWorkerFailed = 3
	// ExitCodeLaunchFailed indicates the worker process could not be started.
	ExitCodeLaunchFailed = 4
	// ExitCodeCancelled indicates the session was interrupted.
	ExitCodeCancelled = 130
)

var (
	rootDebug      bool
	rootConfigPath string

	// appConfig is loaded before every command except worker.
	appConfig = config.GetDefaultConfig()
)

// rootCmd represents the base command for the batchrvt application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "batchrvt",
	Short: "Run batch tasks through a supervised worker process",
	Long: `batchrvt runs a task script against a list of files by launching a worker
process, streaming its output and collecting its session log.

Batch settings live in a JSON document (see 'batchrvt settings'). The
orchestrator itself is configured through config.yaml in ~/.config/batchrvt
or the directory given by --config-path.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
	// Errors are printed by Execute so exit-code-only errors stay quiet.
	SilenceErrors:     true,
	PersistentPreRunE: initCommand,
}

// initCommand loads config.yaml and sets up diagnostic logging.
func initCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(rootConfigPath)
	if err != nil {
		var cfgErr config.ConfigurationError
		if errors.As(err, &cfgErr) {
			return errors.New(cfgErr.DetailedError())
		}
		return err
	}
	appConfig = cfg

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if rootDebug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, cmd.ErrOrStderr())
	return nil
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "batchrvt version %s\n" .Version}}`)

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		var exitErr *exitStatusError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(getExitCode(err))
	}
}

// exitStatusError carries an exit code whose cause was already reported.
type exitStatusError struct {
	Code int
}

func (e *exitStatusError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// WorkerExitError reports a worker that exited with a non-zero code.
type WorkerExitError struct {
	SessionID string
	Code      int
}

func (e *WorkerExitError) Error() string {
	return fmt.Sprintf("worker for session %s exited with code %d", e.SessionID, e.Code)
}

// errCancelled is returned when a session is interrupted.
var errCancelled = errors.New("session cancelled")

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var exitErr *exitStatusError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var settingsErr *orchestrator.SettingsError
	if errors.As(err, &settingsErr) {
		return ExitCodeInvalidSettings
	}

	var workerErr *WorkerExitError
	if errors.As(err, &workerErr) {
		return ExitCodeWorkerFailed
	}

	var launchErr *supervisor.LaunchError
	if errors.As(err, &launchErr) {
		return ExitCodeLaunchFailed
	}

	if errors.Is(err, errCancelled) || errors.Is(err, context.Canceled) {
		return ExitCodeCancelled
	}

	// Default to general error
	return ExitCodeError
}

// init is a special Go function that is executed when the package is initialized.
// It is used here to add subcommands to the root command.
func init() {
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config-path", "", "Configuration directory (default is $HOME/.config/batchrvt)")

	rootCmd.AddCommand(newVersionCmd())
}
