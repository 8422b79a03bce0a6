package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"batchrvt/internal/config"
	"batchrvt/internal/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withConfig(t *testing.T, cfg config.Config) {
	t.Helper()
	original := appConfig
	appConfig = cfg
	t.Cleanup(func() { appConfig = original })
}

func TestWorkerConfigDefaultsToSelf(t *testing.T) {
	withConfig(t, config.GetDefaultConfig())

	cfg, err := workerConfig("")
	require.NoError(t, err)
	self, err := os.Executable()
	require.NoError(t, err)
	assert.Equal(t, self, cfg.Executable)
	assert.Equal(t, []string{"worker"}, cfg.Args)
	assert.Equal(t, 50*time.Millisecond, cfg.PollInterval)
}

func TestWorkerConfigFromConfig(t *testing.T) {
	c := config.GetDefaultConfig()
	c.Worker = config.WorkerConfig{Executable: "/opt/worker", Args: []string{"--x"}, WorkingDirectory: "/srv"}
	withConfig(t, c)

	cfg, err := workerConfig("")
	require.NoError(t, err)
	assert.Equal(t, "/opt/worker", cfg.Executable)
	assert.Equal(t, []string{"--x"}, cfg.Args)
	assert.Equal(t, "/srv", cfg.WorkingDirectory)

	cfg, err = workerConfig("/other")
	require.NoError(t, err)
	assert.Equal(t, "/other", cfg.Executable)
}

func TestSettingsFilePath(t *testing.T) {
	withConfig(t, config.GetDefaultConfig())
	assert.Equal(t, "flag.json", settingsFilePath("flag.json"))
	assert.Equal(t, settings.DefaultSettingsFilePath(), settingsFilePath(""))

	c := config.GetDefaultConfig()
	c.SettingsFile = "configured.json"
	withConfig(t, c)
	assert.Equal(t, "configured.json", settingsFilePath(""))
}

func TestRunRequiresSettingsFile(t *testing.T) {
	_, _, err := execute(t, "run", "--settings-file", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to load settings")
}

func TestRunRejectsInvalidSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.json")
	require.True(t, settings.NewBatchSettings().SaveToFile(path))

	_, _, err := execute(t, "run", "--settings-file", path, "--log-folder", filepath.Join(dir, "logs"), "--worker", filepath.Join(dir, "none"))
	assert.Equal(t, ExitCodeInvalidSettings, getExitCode(err))
}

func TestRunLaunchFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.json")
	s := settings.NewBatchSettings()
	s.TaskScriptFilePath.SetValue(writeTestFile(t, dir, "task.py", ""))
	s.ProcessingOption.SetValue(settings.SingleTaskProcessing)
	require.True(t, s.SaveToFile(path))

	_, _, err := execute(t, "run", "--settings-file", path, "--log-folder", filepath.Join(dir, "logs"), "--worker", filepath.Join(dir, "none"))
	assert.Equal(t, ExitCodeLaunchFailed, getExitCode(err))
}
