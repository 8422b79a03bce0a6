package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"batchrvt/internal/eventlog"
	"batchrvt/internal/orchestrator"
	"batchrvt/internal/settings"
	"batchrvt/internal/supervisor"
	"batchrvt/pkg/logging"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	runSettingsFile   string
	runLogFolder      string
	runSessionID      string
	runTaskData       string
	runTestModeFolder string
	runWorker         string
	runQuiet          bool
	runTailLog        bool
)

// runCmd starts one batch session.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a batch session with the current settings",
	Long: `Validates the batch settings, saves them, launches the worker and streams its
output until it exits.

Lines written by the worker are shown as they are. Anything else the worker
process prints is labelled [ HOST MESSAGE ] or [ HOST ERROR ].

With --quiet a spinner replaces the live output and the session log is
printed once the worker has finished. With --tail-log the session log is
followed while the worker runs.

Press Ctrl+C to terminate the worker.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func settingsFilePath(flag string) string {
	if flag != "" {
		return flag
	}
	if appConfig.SettingsFile != "" {
		return appConfig.SettingsFile
	}
	return settings.DefaultSettingsFilePath()
}

// workerConfig returns how to launch the worker. Without a configured
// executable the running binary is re-used through its worker subcommand.
func workerConfig(executableFlag string) (orchestrator.Config, error) {
	cfg := orchestrator.Config{
		Executable:       executableFlag,
		Args:             appConfig.Worker.Args,
		WorkingDirectory: appConfig.Worker.WorkingDirectory,
		PollInterval:     appConfig.PollInterval(),
		DrainGracePeriod: appConfig.DrainGrace(),
	}
	if cfg.Executable == "" {
		cfg.Executable = appConfig.Worker.Executable
	}
	if cfg.Executable == "" {
		self, err := os.Executable()
		if err != nil {
			return cfg, fmt.Errorf("failed to locate the batchrvt executable: %w", err)
		}
		cfg.Executable = self
		cfg.Args = []string{workerCmdName}
	}
	return cfg, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	path := settingsFilePath(runSettingsFile)
	s := settings.NewBatchSettings()
	if !s.LoadFromFile(path) {
		return fmt.Errorf("failed to load settings from %s (create it with 'batchrvt settings init')", path)
	}

	cfg, err := workerConfig(runWorker)
	if err != nil {
		return err
	}

	logFolder := runLogFolder
	if logFolder == "" {
		logFolder = appConfig.LogFolder
	}
	sessionID := runSessionID
	if sessionID == "" {
		sessionID = eventlog.NewSessionID()
	}
	taskData := runTaskData
	if taskData == "" {
		taskData = s.TaskData.Value()
	}

	data := &orchestrator.CommandData{
		Settings:         s,
		SettingsFilePath: path,
		LogFolder:        logFolder,
		SessionID:        sessionID,
		TaskData:         taskData,
		TestModeFolder:   runTestModeFolder,
	}

	out := cmd.OutOrStdout()
	console := orchestrator.NewWriterViewer(out)
	var viewer orchestrator.Viewer = console
	if runQuiet {
		viewer = nil
	}
	orch := orchestrator.New(cfg, viewer)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runTailLog {
		if err := os.MkdirAll(logFolder, 0755); err != nil {
			return fmt.Errorf("failed to create log folder %s: %w", logFolder, err)
		}
	}

	var sp *spinner.Spinner
	if runQuiet {
		sp = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
		sp.Suffix = fmt.Sprintf(" Running session %s...", sessionID)
		sp.Start()
	}

	var result orchestrator.Result
	g, gctx := errgroup.WithContext(ctx)
	tailCtx, stopTail := context.WithCancel(gctx)
	g.Go(func() error {
		defer stopTail()
		var runErr error
		result, runErr = orch.Run(ctx, data)
		return runErr
	})
	if runTailLog {
		logPath := eventlog.FilePath(logFolder, sessionID)
		g.Go(func() error {
			err := eventlog.Follow(tailCtx, logPath, false, func(line string) {
				console.AppendLine(supervisor.Stdout, text.FgHiBlack.Sprint("[log] "+line))
			})
			if err != nil {
				logging.Warn("CLI", "Stopped following %s: %v", logPath, err)
			}
			return nil
		})
	}
	err = g.Wait()
	stopTail()

	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		return err
	}

	if runQuiet {
		for _, line := range result.PlainTextLog {
			fmt.Fprintln(out, line)
		}
	}

	fmt.Fprintf(out, "Session %s finished with exit code %d in %s\n", result.SessionID, result.ExitCode, result.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "Log file: %s\n", data.GeneratedLogFilePath)

	switch {
	case result.Cancelled:
		return errCancelled
	case result.ExitCode != 0:
		return &WorkerExitError{SessionID: result.SessionID, Code: result.ExitCode}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runSettingsFile, "settings-file", "", "Settings file (default from config.yaml or the per-user location)")
	runCmd.Flags().StringVar(&runLogFolder, "log-folder", "", "Folder receiving the session log (default from config.yaml)")
	runCmd.Flags().StringVar(&runSessionID, "session-id", "", "Session identifier (default is a new UUID)")
	runCmd.Flags().StringVar(&runTaskData, "task-data", "", "Task data handed to the task script (default from settings)")
	runCmd.Flags().StringVar(&runTestModeFolder, "test-mode-folder", "", "Folder receiving the worker's test mode report")
	runCmd.Flags().StringVar(&runWorker, "worker", "", "Worker executable (default from config.yaml or this binary)")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Show a spinner instead of live output")
	runCmd.Flags().BoolVar(&runTailLog, "tail-log", false, "Follow the session log while the worker runs")
}
