package options

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const program = "batchrvt"

func TestParseSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	r := DefaultRegistry()

	values := r.Parse([]string{program, "--settings_file", path})
	got, ok := values.String(SettingsFile)
	require.True(t, ok)
	assert.Equal(t, path, got)

	values = r.Parse([]string{program, "--settings_file", filepath.Join(t.TempDir(), "missing.json")})
	assert.Nil(t, values[SettingsFile])
	assert.Contains(t, values, SettingsFile)
}

func TestParseIsFullyPopulated(t *testing.T) {
	r := DefaultRegistry()
	values := r.Parse([]string{program})

	require.Len(t, values, len(BatchOptions()))
	for _, o := range r.Options() {
		v, ok := values[o.Name]
		require.True(t, ok, o.Name)
		if o.RequiresValue() {
			assert.Nil(t, v, o.Name)
		} else {
			assert.Equal(t, false, v, o.Name)
		}
	}
}

func TestParseSwitchesAreCaseInsensitive(t *testing.T) {
	r := DefaultRegistry()
	values := r.Parse([]string{program, "--SESSION_ID", "abc", "--Audit", "--WorkSets", "OPEN_ALL"})

	id, ok := values.String(SessionID)
	require.True(t, ok)
	assert.Equal(t, "abc", id)
	assert.True(t, values.Bool(Audit))
	assert.False(t, values.Bool(Detach))

	mode, ok := values.String(Worksets)
	require.True(t, ok)
	assert.Equal(t, WorksetsOpenAll, mode)
}

func TestParseValueThatIsASwitch(t *testing.T) {
	r := DefaultRegistry()
	values := r.Parse([]string{program, "--task_data", "--audit"})

	assert.Nil(t, values[TaskData])
	assert.True(t, values.Has(Audit))
	assert.False(t, values.Has(TaskData))
}

func TestParseValuedOptionAtEnd(t *testing.T) {
	r := DefaultRegistry()
	values := r.Parse([]string{program, "--session_id"})
	assert.Nil(t, values[SessionID])
}

func TestParseSkipsProgramPath(t *testing.T) {
	r := DefaultRegistry()
	values := r.Parse([]string{"--audit"})
	assert.False(t, values.Bool(Audit))
	assert.Empty(t, r.InvalidOptions([]string{"--bogus"}))
}

func TestParseRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "list.txt")
	require.NoError(t, os.WriteFile(file, []byte("a.rvt"), 0644))

	r := DefaultRegistry()
	tests := []struct {
		name   string
		args   []string
		option string
		want   any
	}{
		{"zero timeout", []string{"--per_file_processing_timeout", "0"}, PerFileProcessingTimeout, nil},
		{"negative timeout", []string{"--per_file_processing_timeout", "-5"}, PerFileProcessingTimeout, nil},
		{"timeout", []string{"--per_file_processing_timeout", "15"}, PerFileProcessingTimeout, 15},
		{"unknown workset mode", []string{"--worksets", "some"}, Worksets, nil},
		{"unsupported version", []string{"--revit_version", "2010"}, RevitVersion, nil},
		{"version", []string{"--revit_version", "2024"}, RevitVersion, "2024"},
		{"file given as folder", []string{"--log_folder", file}, LogFolder, nil},
		{"folder", []string{"--log_folder", dir}, LogFolder, dir},
		{"folder given as file", []string{"--file_list", dir}, FileList, nil},
		{"file", []string{"--file_list", file}, FileList, file},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := r.Parse(append([]string{program}, tt.args...))
			assert.Equal(t, tt.want, values[tt.option])
		})
	}
}

func TestInvalidOptions(t *testing.T) {
	r := DefaultRegistry()
	argv := []string{program, "--settings_file", "x", "--Sesion_ID", "y", "--AUDIT", "--bogus", "--sesion_id", "value"}

	assert.Equal(t, []string{"sesion_id", "bogus"}, r.InvalidOptions(argv))
	assert.Empty(t, r.InvalidOptions([]string{program, "--help", "-x", "plain"}))
}

func TestNewRegistryValidation(t *testing.T) {
	_, err := NewRegistry(Option{Name: ""})
	assert.Error(t, err)

	_, err = NewRegistry(Option{Name: "a"}, Option{Name: "A"})
	assert.Error(t, err)

	_, err = NewRegistry(Option{Name: "--a"})
	assert.Error(t, err)

	r, err := NewRegistry(Option{Name: "Mixed_Case", Parser: FreeText})
	require.NoError(t, err)
	o, ok := r.Lookup("--MIXED_case")
	require.True(t, ok)
	assert.Equal(t, "mixed_case", o.Name)
	assert.True(t, o.RequiresValue())
	assert.Equal(t, "--mixed_case", o.Switch())
	assert.True(t, r.IsValid("mixed_case"))
	assert.False(t, r.IsValid("other"))
}

func TestValuesNames(t *testing.T) {
	v := Values{"b": nil, "a": true}
	assert.Equal(t, []string{"a", "b"}, v.Names())
	_, ok := v.Int("a")
	assert.False(t, ok)
}

func TestMissingValues(t *testing.T) {
	r := DefaultRegistry()
	argv := []string{program, "--Worksets", "some", "--session_id", "--audit", "--per_file_processing_timeout", "0", "--task_data", "x"}

	assert.Equal(t, []string{SessionID, Worksets, PerFileProcessingTimeout}, r.MissingValues(argv))
	assert.Empty(t, r.MissingValues([]string{program, "--audit"}))
}
