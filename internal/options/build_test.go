package options

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructCommandLineArguments(t *testing.T) {
	got, err := ConstructCommandLineArguments([]Pair{{Name: "test1", Value: "test2"}})
	require.NoError(t, err)
	assert.Equal(t, "--test1 test2", got)
}

func TestConstructCommandLineArgumentsEmpty(t *testing.T) {
	got, err := ConstructCommandLineArguments([]Pair{})
	require.NoError(t, err)
	assert.Equal(t, "", got)

	got, err = ConstructCommandLineArguments([]Pair{{Name: "a", Value: nil}, {Name: "b", Value: nil}})
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestConstructCommandLineArgumentsErrors(t *testing.T) {
	_, err := ConstructCommandLineArguments(nil)
	assert.ErrorIs(t, err, ErrNilArguments)

	_, err = ConstructCommandLineArguments([]Pair{{Name: "ok", Value: "x"}, {Name: "", Value: "y"}})
	assert.ErrorIs(t, err, ErrInvalidPair)

	_, err = BuildArgs([]Pair{{Name: "--prefixed", Value: "y"}})
	assert.ErrorIs(t, err, ErrInvalidPair)
}

func TestBuildArgsValueForms(t *testing.T) {
	args, err := BuildArgs([]Pair{
		{Name: "flag", Value: true},
		{Name: "off", Value: false},
		{Name: "count", Value: 3},
		{Name: "wait", Value: 2 * time.Second},
		{Name: "text", Value: ""},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"--flag", "--count", "3", "--wait", "2s", "--text", ""}, args)
}

func TestJoinAndSplitCommandLine(t *testing.T) {
	tests := []struct {
		name string
		args []string
		line string
	}{
		{"plain", []string{"--a", "b"}, "--a b"},
		{"windows path", []string{"--p", `C:\x\s.json`}, `--p C:\x\s.json`},
		{"spaces", []string{"--p", `C:\My Files\a.rvt`}, `--p "C:\My Files\a.rvt"`},
		{"trailing backslash", []string{"--p", `C:\My Files\`}, `--p "C:\My Files\\"`},
		{"quotes", []string{"--d", `say "hi"`}, `--d "say \"hi\""`},
		{"empty", []string{"--d", ""}, `--d ""`},
		{"json", []string{"--task_data", `{"a": 1}`}, `--task_data "{\"a\": 1}"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := JoinCommandLine(tt.args)
			assert.Equal(t, tt.line, line)
			assert.Equal(t, tt.args, SplitCommandLine(line))
		})
	}
}

func TestSplitCommandLineWhitespace(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitCommandLine("  a\tb \r\n c  "))
	assert.Empty(t, SplitCommandLine("   "))
	assert.Equal(t, []string{"xy zw"}, SplitCommandLine(`x"y z"w`))
}

func TestBuildThenParseRoundTrip(t *testing.T) {
	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "settings.json")
	scriptPath := filepath.Join(dir, "my task.py")
	require.NoError(t, os.WriteFile(settingsPath, []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(scriptPath, []byte(""), 0644))

	want := Values{
		SettingsFile:             settingsPath,
		LogFolder:                dir,
		SessionID:                "2026-10-19_12-00-00",
		TaskData:                 `{"floors": 12, "name": "tower \"A\""}`,
		TestModeFolderPath:       nil,
		FileList:                 nil,
		RevitVersion:             "2024",
		TaskScript:               scriptPath,
		Detach:                   true,
		CreateNewLocal:           false,
		Worksets:                 WorksetsLastViewed,
		Audit:                    true,
		PerFileProcessingTimeout: 30,
		Help:                     false,
	}

	r := DefaultRegistry()
	pairs := make([]Pair, 0, len(want))
	for _, o := range r.Options() {
		pairs = append(pairs, Pair{Name: o.Name, Value: want[o.Name]})
	}

	args, err := BuildArgs(pairs)
	require.NoError(t, err)
	assert.Equal(t, want, r.Parse(append([]string{program}, args...)))

	line, err := ConstructCommandLineArguments(pairs)
	require.NoError(t, err)
	assert.Equal(t, want, r.Parse(append([]string{program}, SplitCommandLine(line)...)))
	assert.Empty(t, r.InvalidOptions(append([]string{program}, args...)))
}
