package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `[2024-03-01 10:00:00] [main] [INFO] boot
[2024-03-01 10:00:05] [worker-1] [WARNING] slow disk
[2024-03-01 10:00:10] [worker-2] [ERROR] disk full
`

// runApp runs the CLI with args and returns stdout and stderr
func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(context.Background(), append([]string{"logsink"}, args...))
	return stdout.String(), stderr.String(), err
}

func TestReadCommand(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(logFile, []byte(fixture), 0644))

	t.Run("all", func(t *testing.T) {
		out, _, err := runApp(t, "read", "--file", logFile)
		require.NoError(t, err)
		assert.Equal(t, fixture, out)
	})

	t.Run("levels", func(t *testing.T) {
		out, _, err := runApp(t, "read", "--file", logFile, "--level", "warning", "--level", "error")
		require.NoError(t, err)
		assert.NotContains(t, out, "boot")
		assert.Contains(t, out, "slow disk")
		assert.Contains(t, out, "disk full")
	})

	t.Run("time range", func(t *testing.T) {
		out, _, err := runApp(t, "read", "--file", logFile,
			"--from", "2024-03-01 10:00:05", "--to", "2024-03-01 10:00:10")
		require.NoError(t, err)
		assert.Equal(t, fixture[len("[2024-03-01 10:00:00] [main] [INFO] boot\n"):], out)
	})

	t.Run("config logfile", func(t *testing.T) {
		cfgPath := filepath.Join(dir, "logger_config.txt")
		require.NoError(t, os.WriteFile(cfgPath, []byte("logfile="+logFile+"\n"), 0644))

		out, _, err := runApp(t, "--config", cfgPath, "read", "--level", "ERROR")
		require.NoError(t, err)
		assert.Equal(t, "[2024-03-01 10:00:10] [worker-2] [ERROR] disk full\n", out)
	})

	t.Run("missing file", func(t *testing.T) {
		out, errOut, err := runApp(t, "read", "--file", filepath.Join(dir, "none.log"))
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Contains(t, errOut, "not found")
	})

	t.Run("bad level", func(t *testing.T) {
		_, _, err := runApp(t, "read", "--file", logFile, "--level", "TRACE")
		assert.Error(t, err)
	})

	t.Run("inverted range", func(t *testing.T) {
		_, _, err := runApp(t, "read", "--file", logFile,
			"--from", "2024-03-01 10:00:10", "--to", "2024-03-01 10:00:05")
		assert.ErrorContains(t, err, "to is before from")
	})
}

func TestArchivesCommand(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app_1.log"), []byte("one\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app_3.log"), []byte("three\n"), 0644))

	out, _, err := runApp(t, "archives", "--file", logFile)
	require.NoError(t, err)
	assert.Equal(t,
		"1\t4\t"+filepath.Join(dir, "app_1.log")+"\n"+
			"3\t6\t"+filepath.Join(dir, "app_3.log")+"\n",
		out)
}

func TestServeRequiresEndpoint(t *testing.T) {
	_, _, err := runApp(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to serve")
}
