package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir is t.Chdir for toolchains older than Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()

	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "workdeck")
	assert.Contains(t, out, Version)
}

func TestConfigInitCommand(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, ".workdeck.yml")

	data, err := os.ReadFile(".workdeck.yml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "console:")
	assert.Contains(t, string(data), "max_entries: 2000")

	// Refuses to clobber an existing file.
	_, err = execute(t, "config", "init")
	assert.Error(t, err)
}

func TestConfigShowCommand(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "workspaces:")
	assert.Contains(t, out, "max_open: 32")
}

func TestLogsCommand_Unreachable(t *testing.T) {
	_, err := execute(t, "logs", "--addr", "localhost:1")
	assert.Error(t, err)
}
