package worker

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"batchrvt/internal/eventlog"
	"batchrvt/internal/options"
	"batchrvt/internal/settings"
	"batchrvt/internal/supervisor"
	"batchrvt/internal/taskdata"
	"batchrvt/pkg/logging"
)

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Worker runs one batch session.
type Worker struct {
	registry *options.Registry
	stdout   io.Writer
	stderr   io.Writer
	now      func() time.Time

	log *eventlog.Writer
}

// Option configures a Worker.
type Option func(*Worker)

// WithClock replaces the clock used for protocol lines and log entries.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) { w.now = now }
}

// New returns a worker that understands the batch option vocabulary.
func New(stdout, stderr io.Writer, opts ...Option) *Worker {
	w := &Worker{
		registry: options.DefaultRegistry(),
		stdout:   stdout,
		stderr:   stderr,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// FileReport is the structured log payload written for each listed file.
type FileReport struct {
	Message  string `json:"message"`
	FilePath string `json:"filePath"`
	Index    int    `json:"index"`
	Count    int    `json:"count"`
	Exists   bool   `json:"exists"`
}

// TestModeReport is written to the test mode folder at the end of a session.
type TestModeReport struct {
	SessionID string   `json:"sessionId"`
	Files     []string `json:"files"`
	Missing   []string `json:"missing"`
	TaskData  []string `json:"taskDataKeys"`
}

// TestModeFileName returns the name of the report written to the test mode folder.
func TestModeFileName(sessionID string) string {
	return "BatchRvt_" + sessionID + ".TestMode.json"
}

// Run executes a session for argv, where argv[0] is the program path, and
// returns the process exit code.
func (w *Worker) Run(argv []string) int {
	if invalid := w.registry.InvalidOptions(argv); len(invalid) > 0 {
		for i := range invalid {
			invalid[i] = options.SwitchPrefix + invalid[i]
		}
		fmt.Fprintf(w.stderr, "Invalid options: %s\n\n", strings.Join(invalid, ", "))
		w.usage(w.stderr)
		return ExitUsage
	}

	values := w.registry.Parse(argv)
	if values.Bool(options.Help) {
		w.usage(w.stdout)
		return ExitOK
	}
	if missing := w.registry.MissingValues(argv); len(missing) > 0 {
		for _, name := range missing {
			fmt.Fprintf(w.stderr, "Missing or invalid value for %s%s\n", options.SwitchPrefix, name)
		}
		return ExitUsage
	}

	settingsFile, ok := values.String(options.SettingsFile)
	if !ok {
		fmt.Fprintf(w.stderr, "%s%s is required\n", options.SwitchPrefix, options.SettingsFile)
		return ExitUsage
	}

	sessionID, _ := values.String(options.SessionID)
	if sessionID == "" {
		sessionID = eventlog.NewSessionID()
	}
	if folder, ok := values.String(options.LogFolder); ok {
		w.log = eventlog.NewWriter(eventlog.FilePath(folder, sessionID), sessionID, eventlog.WithClock(w.now))
		if w.log.Open() {
			defer w.log.Close()
		}
	}

	w.report("Session %s started.", sessionID)

	s := settings.NewBatchSettings()
	if !s.LoadFromFile(settingsFile) {
		w.fail("Failed to load settings file %s.", settingsFile)
		return ExitFailure
	}
	w.report("Loaded settings from %s.", settingsFile)
	w.applyOverrides(s, values)

	data := s.TaskData.Value()
	if text, ok := values.String(options.TaskData); ok {
		data = text
	}
	task, err := taskdata.Parse(data)
	if err != nil {
		w.report("Task data is not a JSON object and is passed through as text.")
		task = taskdata.New()
		if err := task.Set("text", data); err != nil {
			w.fail("Failed to store task data: %v.", err)
			return ExitFailure
		}
	}
	if keys := task.Keys(); len(keys) > 0 {
		w.report("Task data keys: %s.", strings.Join(keys, ", "))
	}

	if problems := s.Validate(); len(problems) > 0 {
		for _, p := range problems {
			w.fail("Settings problem: %s.", p)
		}
		return ExitFailure
	}

	w.report("Task script: %s", s.TaskScriptFilePath.Value())

	var files, missing []string
	if s.ProcessingOption.Value() == settings.SingleTaskProcessing {
		w.report("Single task mode (version %s).", versionOrDefault(s.SingleTaskVersion.Value()))
	} else {
		files, err = w.resolveFiles(s)
		if err != nil {
			w.fail("%v", err)
			return ExitFailure
		}
		missing = w.reportFiles(files)
	}

	if folder, ok := values.String(options.TestModeFolderPath); ok {
		if err := writeTestModeReport(folder, TestModeReport{
			SessionID: sessionID,
			Files:     nonNil(files),
			Missing:   nonNil(missing),
			TaskData:  task.Keys(),
		}); err != nil {
			w.fail("Failed to write test mode report: %v", err)
			return ExitFailure
		}
		w.report("Test mode report written to %s.", folder)
	}

	w.report("Session %s finished.", sessionID)
	return ExitOK
}

// applyOverrides copies command-line values over the loaded settings.
func (w *Worker) applyOverrides(s *settings.BatchSettings, values options.Values) {
	if path, ok := values.String(options.TaskScript); ok {
		s.TaskScriptFilePath.SetValue(path)
	}
	if path, ok := values.String(options.FileList); ok {
		s.FileListFilePath.SetValue(path)
		s.FilePaths.SetValue(nil)
		s.ProcessingOption.SetValue(settings.BatchFileProcessing)
	}
	if version, ok := values.String(options.RevitVersion); ok {
		s.VersionSelectionOption.SetValue(settings.UseSpecificVersion)
		s.BatchTaskVersion.SetValue(version)
	}
	switch {
	case values.Bool(options.Detach):
		s.CentralFileOpenOption.SetValue(settings.Detach)
	case values.Bool(options.CreateNewLocal):
		s.CentralFileOpenOption.SetValue(settings.CreateNewLocal)
	}
	if mode, ok := values.String(options.Worksets); ok {
		switch mode {
		case options.WorksetsOpenAll:
			s.WorksetConfigurationOption.SetValue(settings.OpenAllWorksets)
		case options.WorksetsLastViewed:
			s.WorksetConfigurationOption.SetValue(settings.OpenLastViewed)
		default:
			s.WorksetConfigurationOption.SetValue(settings.CloseAllWorksets)
		}
	}
	if values.Bool(options.Audit) {
		s.AuditOnOpening.SetValue(true)
	}
	if minutes, ok := values.Int(options.PerFileProcessingTimeout); ok {
		s.ProcessingTimeOutInMinutes.SetValue(minutes)
	}
}

func (w *Worker) resolveFiles(s *settings.BatchSettings) ([]string, error) {
	if files := s.FilePaths.Value(); len(files) > 0 {
		return files, nil
	}
	files, err := ReadFileList(s.FileListFilePath.Value())
	if err != nil {
		return nil, err
	}
	w.report("Read %d file(s) from %s.", len(files), s.FileListFilePath.Value())
	return files, nil
}

func (w *Worker) reportFiles(files []string) (missing []string) {
	if len(files) == 0 {
		w.report("The file list is empty.")
		return nil
	}
	for i, path := range files {
		info, err := os.Stat(path)
		exists := err == nil && !info.IsDir()
		message := fmt.Sprintf("Processing file (%d of %d): %s", i+1, len(files), path)
		if !exists {
			message = fmt.Sprintf("File (%d of %d) does not exist: %s", i+1, len(files), path)
			missing = append(missing, path)
		}
		w.protocol(message)
		if w.log != nil {
			w.log.WriteMessage(FileReport{
				Message:  message,
				FilePath: path,
				Index:    i + 1,
				Count:    len(files),
				Exists:   exists,
			})
		}
	}
	if len(missing) > 0 {
		w.report("%d of %d file(s) could not be found.", len(missing), len(files))
	}
	return missing
}

func (w *Worker) protocol(message string) {
	fmt.Fprintf(w.stdout, "%s : %s\n", w.now().Format(supervisor.TimestampLayout), message)
}

// report emits a protocol line and the matching log entry.
func (w *Worker) report(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	w.protocol(message)
	if w.log != nil {
		w.log.WriteText(message)
	}
	logging.Debug("Worker", "%s", message)
}

func (w *Worker) fail(format string, args ...any) {
	w.report("ERROR: "+format, args...)
}

func (w *Worker) usage(out io.Writer) {
	fmt.Fprintln(out, "Usage: worker --settings_file <path> [options]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Options:")
	for _, o := range w.registry.Options() {
		sw := o.Switch()
		if o.RequiresValue() {
			sw += " <value>"
		}
		fmt.Fprintf(out, "  %-38s %s\n", sw, o.Description)
	}
}

func writeTestModeReport(folder string, report TestModeReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(folder, TestModeFileName(report.SessionID)), data, 0644)
}

func versionOrDefault(v string) string {
	if settings.IsBlank(v) {
		return "default"
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
