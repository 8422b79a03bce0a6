package cmd

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runVersion(t *testing.T, version string, args ...string) string {
	t.Helper()
	original := rootCmd.Version
	t.Cleanup(func() {
		rootCmd.Version = original
		versionVerbose = false
	})
	rootCmd.Version = version

	var buf bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return buf.String()
}

func TestVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    string
	}{
		{"release", "1.2.3", "batchrvt version 1.2.3\n"},
		{"unset", "", "batchrvt version \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, runVersion(t, tt.version))
		})
	}
}

func TestVersionCommandVerbose(t *testing.T) {
	out := runVersion(t, "1.2.3", "--verbose")
	assert.Contains(t, out, "batchrvt version 1.2.3\n")
	assert.Contains(t, out, "go: "+runtime.Version())
}

func TestVersionCommandRejectsArguments(t *testing.T) {
	cmd := newVersionCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"extra"})
	assert.Error(t, cmd.Execute())
}
