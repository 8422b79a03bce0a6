package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"batchrvt/internal/eventlog"
	"batchrvt/internal/settings"
	"batchrvt/internal/supervisor"
	"batchrvt/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helperEnv = "BATCHRVT_ORCHESTRATOR_HELPER"

// TestHelperProcess is not a real test. It is the worker process started by
// the orchestrator tests.
func TestHelperProcess(t *testing.T) {
	mode := os.Getenv(helperEnv)
	if mode == "" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	args = append([]string{"worker"}, args[1:]...)

	switch mode {
	case "worker":
		os.Exit(worker.New(os.Stdout, os.Stderr).Run(args))
	case "foreign":
		fmt.Println("hello")
		fmt.Fprintln(os.Stderr, "oops")
		os.Exit(4)
	case "sleep":
		fmt.Println("12:00:00 : waiting")
		time.Sleep(time.Minute)
		os.Exit(0)
	}
	os.Exit(2)
}

type recorder struct {
	mu    sync.Mutex
	lines []string
	err   []string
	seen  chan struct{}
	once  sync.Once
}

func newRecorder() *recorder { return &recorder{seen: make(chan struct{})} }

func (r *recorder) AppendLine(stream supervisor.Stream, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stream == supervisor.Stderr {
		r.err = append(r.err, text)
	} else {
		r.lines = append(r.lines, text)
	}
	r.once.Do(func() { close(r.seen) })
}

func validSettings(t *testing.T, dir string) *settings.BatchSettings {
	t.Helper()
	script := filepath.Join(dir, "task.py")
	list := filepath.Join(dir, "list.txt")
	model := filepath.Join(dir, "model.rvt")
	require.NoError(t, os.WriteFile(script, []byte("pass"), 0644))
	require.NoError(t, os.WriteFile(model, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(list, []byte(model+"\n"), 0644))

	s := settings.NewBatchSettings()
	s.TaskScriptFilePath.SetValue(script)
	s.FileListFilePath.SetValue(list)
	return s
}

func newHelperOrchestrator(t *testing.T, mode string, viewer Viewer) *Orchestrator {
	t.Helper()
	t.Setenv(helperEnv, mode)
	return New(Config{
		Executable:       os.Args[0],
		Args:             []string{"-test.run=TestHelperProcess", "--"},
		WorkingDirectory: t.TempDir(),
		PollInterval:     5 * time.Millisecond,
		DrainGracePeriod: time.Second,
		Now:              func() time.Time { return time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local) },
	}, viewer)
}

func newCommandData(t *testing.T) *CommandData {
	dir := t.TempDir()
	return &CommandData{
		Settings:         validSettings(t, dir),
		SettingsFilePath: filepath.Join(dir, "BatchRvt.Settings.json"),
		LogFolder:        filepath.Join(dir, "logs"),
		SessionID:        "session-1",
		TaskData:         `{"k": "v"}`,
	}
}

func TestRunEndToEnd(t *testing.T) {
	rec := newRecorder()
	o := newHelperOrchestrator(t, "worker", rec)
	data := newCommandData(t)

	result, err := o.Run(context.Background(), data)
	require.NoError(t, err)

	assert.True(t, result.Succeeded(), "stderr: %v", rec.err)
	assert.Equal(t, "session-1", result.SessionID)
	assert.Equal(t, eventlog.FilePath(data.LogFolder, "session-1"), data.GeneratedLogFilePath)
	assert.Equal(t, data.GeneratedLogFilePath, result.LogFilePath)
	assert.FileExists(t, data.SettingsFilePath)

	require.NotEmpty(t, rec.lines)
	for _, line := range rec.lines {
		assert.True(t, supervisor.IsProtocolLine(line), line)
		assert.NotContains(t, line, "[ HOST")
	}
	assert.Equal(t, len(rec.lines), result.StdoutLines)
	assert.Contains(t, strings.Join(rec.lines, "\n"), "Task data keys: k.")

	require.NotEmpty(t, result.PlainTextLog)
	assert.True(t, strings.HasSuffix(result.PlainTextLog[0], " : Session session-1 started."), result.PlainTextLog[0])
}

func TestRunResolvesRelativePaths(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)
	rec := newRecorder()
	o := newHelperOrchestrator(t, "worker", rec)
	o.cfg.Executable = exe

	base := t.TempDir()
	data := &CommandData{
		Settings:         validSettings(t, base),
		SettingsFilePath: "BatchRvt.Settings.json",
		LogFolder:        "logs",
		SessionID:        "session-rel",
	}
	t.Chdir(base)

	result, err := o.Run(context.Background(), data)
	require.NoError(t, err)

	assert.True(t, result.Succeeded(), "stderr: %v", rec.err)
	assert.Empty(t, rec.err)
	assert.True(t, filepath.IsAbs(data.SettingsFilePath), data.SettingsFilePath)
	assert.True(t, filepath.IsAbs(data.LogFolder), data.LogFolder)
	assert.FileExists(t, filepath.Join(base, "BatchRvt.Settings.json"))
	assert.FileExists(t, eventlog.FilePath(filepath.Join(base, "logs"), "session-rel"))
	assert.NotEmpty(t, result.PlainTextLog)
}

func TestRunLabelsForeignOutput(t *testing.T) {
	rec := newRecorder()
	o := newHelperOrchestrator(t, "foreign", rec)

	result, err := o.Run(context.Background(), newCommandData(t))
	require.NoError(t, err)

	assert.Equal(t, 4, result.ExitCode)
	assert.False(t, result.Succeeded())
	assert.Equal(t, []string{"10:00:00 : [ HOST MESSAGE ] : hello"}, rec.lines)
	assert.Equal(t, []string{"10:00:00 : [ HOST ERROR ] : oops"}, rec.err)
	assert.Empty(t, result.PlainTextLog)
}

func TestRunCancelTerminatesWorker(t *testing.T) {
	rec := newRecorder()
	o := newHelperOrchestrator(t, "sleep", rec)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-rec.seen:
		case <-time.After(10 * time.Second):
		}
		cancel()
	}()

	start := time.Now()
	result, err := o.Run(ctx, newCommandData(t))
	require.NoError(t, err)

	assert.True(t, result.Cancelled)
	assert.False(t, result.Succeeded())
	assert.Less(t, time.Since(start), 30*time.Second)
	assert.Equal(t, []string{"12:00:00 : waiting"}, rec.lines)
}

func TestRunRejectsInvalidSettings(t *testing.T) {
	o := New(Config{Executable: "unused"}, nil)
	data := newCommandData(t)
	data.Settings = settings.NewBatchSettings()

	_, err := o.Run(context.Background(), data)
	var settingsErr *SettingsError
	require.True(t, errors.As(err, &settingsErr))
	assert.Contains(t, settingsErr.Problems, "task script is not set")
	assert.NoFileExists(t, data.SettingsFilePath)
	assert.Empty(t, data.GeneratedLogFilePath)

	_, err = o.Run(context.Background(), &CommandData{})
	assert.ErrorIs(t, err, ErrNoSettings)
}

func TestRunLaunchFailure(t *testing.T) {
	o := New(Config{Executable: filepath.Join(t.TempDir(), "no-such-worker")}, nil)
	data := newCommandData(t)

	_, err := o.Run(context.Background(), data)
	var launchErr *supervisor.LaunchError
	require.True(t, errors.As(err, &launchErr))
	assert.Empty(t, data.GeneratedLogFilePath)
}

func TestPrepareFillsDefaults(t *testing.T) {
	o := New(Config{}, nil)
	data := newCommandData(t)
	data.SessionID = ""

	require.NoError(t, o.Prepare(data))
	assert.NotEmpty(t, data.SessionID)
	assert.DirExists(t, data.LogFolder)

	data.LogFolder = ""
	assert.Error(t, o.Prepare(data))
}

func TestCommandLine(t *testing.T) {
	data := &CommandData{
		SettingsFilePath: `C:\My Settings\s.json`,
		LogFolder:        `C:\logs`,
		SessionID:        "abc",
		TestModeFolder:   `C:\test`,
	}

	line, err := data.CommandLine()
	require.NoError(t, err)
	assert.Equal(t, `--settings_file "C:\My Settings\s.json" --log_folder C:\logs --session_id abc --test_mode_folder_path C:\test`, line)
}

func TestWriterViewer(t *testing.T) {
	var buf bytes.Buffer
	v := NewWriterViewer(&buf)
	v.AppendLine(supervisor.Stdout, "one")
	v.AppendLine(supervisor.Stderr, "two")
	assert.Equal(t, "one\ntwo\n", buf.String())

	var got []string
	ViewerFunc(func(_ supervisor.Stream, text string) { got = append(got, text) }).AppendLine(supervisor.Stdout, "x")
	assert.Equal(t, []string{"x"}, got)
}
