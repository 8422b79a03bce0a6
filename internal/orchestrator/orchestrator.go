package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"batchrvt/internal/eventlog"
	"batchrvt/internal/options"
	"batchrvt/internal/supervisor"
	"batchrvt/pkg/logging"
)

const (
	// DefaultPollInterval is how often worker output is polled.
	DefaultPollInterval = 50 * time.Millisecond
	// DefaultDrainGracePeriod bounds draining after the worker exits or is
	// terminated.
	DefaultDrainGracePeriod = 2 * time.Second
)

// Config describes how the worker is launched.
type Config struct {
	Executable string
	// Args are placed before the generated options.
	Args             []string
	WorkingDirectory string

	PollInterval     time.Duration
	DrainGracePeriod time.Duration

	// Now stamps foreign output lines. Defaults to time.Now.
	Now func() time.Time
}

// Result summarises a finished session.
type Result struct {
	SessionID   string
	ExitCode    int
	Cancelled   bool
	LogFilePath string
	// PlainTextLog is the session log projected for reading.
	PlainTextLog []string
	StdoutLines  int
	StderrLines  int
	Duration     time.Duration
}

// Succeeded reports whether the worker exited cleanly on its own.
func (r Result) Succeeded() bool { return !r.Cancelled && r.ExitCode == 0 }

// Orchestrator runs worker sessions one at a time.
type Orchestrator struct {
	cfg        Config
	viewer     Viewer
	newSession func() *supervisor.Session
}

// New returns an orchestrator reporting lines to viewer; nil discards them.
func New(cfg Config, viewer Viewer) *Orchestrator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.DrainGracePeriod <= 0 {
		cfg.DrainGracePeriod = DefaultDrainGracePeriod
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if viewer == nil {
		viewer = discardViewer{}
	}
	return &Orchestrator{cfg: cfg, viewer: viewer, newSession: supervisor.NewSession}
}

// Prepare validates data, fills in defaults, makes its paths absolute, saves
// the settings file and creates the log folder.
func (o *Orchestrator) Prepare(data *CommandData) error {
	if data == nil || data.Settings == nil {
		return ErrNoSettings
	}
	if problems := data.Settings.Validate(); len(problems) > 0 {
		return &SettingsError{Problems: problems}
	}
	if data.SessionID == "" {
		data.SessionID = eventlog.NewSessionID()
	}
	if data.SettingsFilePath == "" {
		data.SettingsFilePath = data.Settings.DefaultPath()
	}
	if data.LogFolder == "" {
		return errors.New("no log folder supplied")
	}
	// The worker resolves paths against its own working directory.
	for _, path := range []*string{&data.SettingsFilePath, &data.LogFolder, &data.TestModeFolder} {
		if *path == "" {
			continue
		}
		abs, err := filepath.Abs(*path)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", *path, err)
		}
		*path = abs
	}
	if err := os.MkdirAll(data.LogFolder, 0755); err != nil {
		return fmt.Errorf("failed to create log folder %s: %w", data.LogFolder, err)
	}
	if !data.Settings.SaveToFile(data.SettingsFilePath) {
		return fmt.Errorf("failed to save settings to %s", data.SettingsFilePath)
	}
	return nil
}

// Run executes one session and blocks until it is over. Launch failures are
// returned as *supervisor.LaunchError; a non-zero exit code is not an error.
func (o *Orchestrator) Run(ctx context.Context, data *CommandData) (Result, error) {
	if err := o.Prepare(data); err != nil {
		return Result{}, err
	}

	generated, err := options.BuildArgs(data.Pairs())
	if err != nil {
		return Result{}, fmt.Errorf("failed to build worker arguments: %w", err)
	}
	args := append(append([]string(nil), o.cfg.Args...), generated...)

	session := o.newSession()
	started := time.Now()
	if err := session.Start(o.cfg.Executable, args, o.cfg.WorkingDirectory); err != nil {
		logging.Error("Orchestrator", err, "Failed to start worker session %s", data.SessionID)
		return Result{}, err
	}
	defer session.Close()

	data.GeneratedLogFilePath = eventlog.FilePath(data.LogFolder, data.SessionID)
	logging.Info("Orchestrator", "Session %s running as pid %d", data.SessionID, session.Pid())

	result := Result{SessionID: data.SessionID, LogFilePath: data.GeneratedLogFilePath}
	o.supervise(ctx, session, &result)

	result.ExitCode = session.ExitCode()
	result.Duration = time.Since(started)

	lines, err := eventlog.ReadLinesAsPlainText(data.GeneratedLogFilePath, false)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn("Orchestrator", "Cannot read session log %s: %v", data.GeneratedLogFilePath, err)
	}
	result.PlainTextLog = lines

	logging.Info("Orchestrator", "Session %s finished with exit code %d after %s", data.SessionID, result.ExitCode, result.Duration.Round(time.Millisecond))
	return result, nil
}

// supervise polls session until it has exited and its output is drained.
func (o *Orchestrator) supervise(ctx context.Context, session *supervisor.Session, result *Result) {
	ticker := time.NewTicker(o.cfg.PollInterval)
	defer ticker.Stop()

	var drainDeadline, killDeadline time.Time
	done := ctx.Done()

	for {
		o.pump(session, result)

		if !killDeadline.IsZero() && !session.IsExited() && time.Now().After(killDeadline) {
			logging.Warn("Orchestrator", "Worker pid %d did not exit after termination", session.Pid())
			return
		}

		if session.IsExited() {
			if session.Drained() {
				return
			}
			if drainDeadline.IsZero() {
				drainDeadline = time.Now().Add(o.cfg.DrainGracePeriod)
			} else if time.Now().After(drainDeadline) {
				logging.Warn("Orchestrator", "Output of pid %d still open after exit; closing", session.Pid())
				return
			}
		}

		select {
		case <-done:
			result.Cancelled = true
			done = nil
			killDeadline = time.Now().Add(o.cfg.DrainGracePeriod)
			if err := session.Terminate(); err != nil {
				logging.Error("Orchestrator", err, "Failed to terminate worker")
			}
		case <-ticker.C:
		}
	}
}

func (o *Orchestrator) pump(session *supervisor.Session, result *Result) {
	for _, line := range session.PollStdout() {
		result.StdoutLines++
		o.viewer.AppendLine(supervisor.Stdout, supervisor.DisplayLine(supervisor.Stdout, line, o.cfg.Now()))
	}
	for _, line := range session.PollStderr() {
		result.StderrLines++
		o.viewer.AppendLine(supervisor.Stderr, supervisor.DisplayLine(supervisor.Stderr, line, o.cfg.Now()))
	}
}
