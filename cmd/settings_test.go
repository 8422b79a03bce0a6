package cmd

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"batchrvt/internal/orchestrator"
	"batchrvt/internal/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "BatchRvt.Settings.json")

	stdout, _, err := execute(t, "settings", "init", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote default settings to "+path)
	assert.FileExists(t, path)

	_, _, err = execute(t, "settings", "init", "--file", path)
	assert.ErrorContains(t, err, "already exists")

	_, _, err = execute(t, "settings", "init", "--file", path, "--force")
	require.NoError(t, err)

	stdout, _, err = execute(t, "settings", "show", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "deleteLocalAfter")
	assert.Contains(t, stdout, `"Detach"`)

	stdout, _, err = execute(t, "settings", "show", "--file", path, "-o", "json")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, true, doc["deleteLocalAfter"])

	stdout, _, err = execute(t, "settings", "show", "--file", path, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "deleteLocalAfter: true\n")
}

func TestSettingsShowMissingFileShowsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	stdout, stderr, err := execute(t, "settings", "show", "--file", path, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "showing defaults")
	assert.Contains(t, stdout, `"taskScriptFilePath": ""`)

	_, _, err = execute(t, "settings", "show", "--file", path, "-o", "xml")
	assert.Error(t, err)
}

func TestSettingsSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")

	stdout, _, err := execute(t, "settings", "set", "taskScriptFilePath", `C:\Tasks\export.py`, "--file", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, `taskScriptFilePath = "C:\\Tasks\\export.py"`)

	_, _, err = execute(t, "settings", "set", "revitFilePaths", `["a.rvt", "b.rvt"]`, "--file", path)
	require.NoError(t, err)
	_, _, err = execute(t, "settings", "set", "processingTimeOutInMinutes", "15", "--file", path)
	require.NoError(t, err)
	_, _, err = execute(t, "settings", "set", "centralFileOpenOption", "CreateNewLocal", "--file", path)
	require.NoError(t, err)

	s := settings.NewBatchSettings()
	require.True(t, s.LoadFromFile(path))
	assert.Equal(t, `C:\Tasks\export.py`, s.TaskScriptFilePath.Value())
	assert.Equal(t, []string{"a.rvt", "b.rvt"}, s.FilePaths.Value())
	assert.Equal(t, 15, s.ProcessingTimeOutInMinutes.Value())
	assert.Equal(t, settings.CreateNewLocal, s.CentralFileOpenOption.Value())

	_, _, err = execute(t, "settings", "set", "processingTimeOutInMinutes", "soon", "--file", path)
	assert.ErrorContains(t, err, "is not a valid value")

	_, _, err = execute(t, "settings", "set", "noSuchSetting", "1", "--file", path)
	assert.ErrorContains(t, err, "unknown setting")
}

func TestSettingsValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.json")
	require.True(t, settings.NewBatchSettings().SaveToFile(path))

	stdout, _, err := execute(t, "settings", "validate", "--file", path)
	var settingsErr *orchestrator.SettingsError
	require.True(t, errors.As(err, &settingsErr))
	assert.Contains(t, stdout, "- task script is not set")
	assert.Equal(t, ExitCodeInvalidSettings, getExitCode(err))

	s := settings.NewBatchSettings()
	s.TaskScriptFilePath.SetValue(writeTestFile(t, dir, "task.py", ""))
	s.ProcessingOption.SetValue(settings.SingleTaskProcessing)
	require.True(t, s.SaveToFile(path))

	stdout, _, err = execute(t, "settings", "validate", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "is valid")

	_, _, err = execute(t, "settings", "validate", "--file", filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "does not exist")
}

func TestSettingValues(t *testing.T) {
	values := settingValues("true")
	require.Len(t, values, 2)
	assert.Equal(t, "true", string(values[0]))
	assert.Equal(t, `"true"`, string(values[1]))

	values = settingValues(`C:\x`)
	require.Len(t, values, 1)
	assert.Equal(t, `"C:\\x"`, string(values[0]))
}
