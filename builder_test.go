package logsink

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	t.Run("successful build returns configured sink", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "built.log")

		sink, err := NewBuilder().
			LogFile(logFile).
			LevelString("warn").
			MaxSizeKB(8).
			EnableConsole(false).
			Origin("api").
			Build()
		require.NoError(t, err, "Builder.Build() should not return an error on valid config")
		require.NotNil(t, sink)
		defer sink.Close()

		cfg := sink.Config()
		assert.Equal(t, logFile, cfg.LogFile)
		assert.Equal(t, LevelWarning, cfg.Level)
		assert.Equal(t, int64(8*1024), cfg.MaxSizeBytes)
		assert.False(t, cfg.EnableConsole)
		assert.Equal(t, "api", cfg.Origin)

		sink.LogWarning("hello")
		lines := readLines(t, logFile)
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], "[api] [WARNING] hello")
	})

	t.Run("builder error accumulation", func(t *testing.T) {
		sink, err := NewBuilder().
			LevelString("invalid-level-string").
			LogFile("/some/dir/app.log").
			Build()

		require.Error(t, err, "Build should fail with an invalid level string")
		assert.ErrorIs(t, err, ErrInvalidSeverity)
		assert.Contains(t, err.Error(), "logsink: invalid severity")
		assert.Nil(t, sink, "A nil sink should be returned on build error")
	})

	t.Run("validation error", func(t *testing.T) {
		sink, err := NewBuilder().LogFile("").Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logfile cannot be empty")
		assert.Nil(t, sink)
	})

	t.Run("from file", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := filepath.Join(dir, "logger_config.txt")
		require.NoError(t, os.WriteFile(cfgPath, []byte("level=ERROR\nmaxsize=4\n"), 0644))

		sink, err := NewBuilder().FromFile(cfgPath).EnableConsole(false).Build()
		require.NoError(t, err)
		assert.Equal(t, LevelError, sink.Level())
		assert.Equal(t, int64(4096), sink.Config().MaxSizeBytes)
	})

	t.Run("from missing file", func(t *testing.T) {
		_, err := NewBuilder().FromFile(filepath.Join(t.TempDir(), "absent.txt")).Build()
		assert.ErrorIs(t, err, ErrConfigLoad)
	})

	t.Run("console and clock", func(t *testing.T) {
		var stdout bytes.Buffer
		stamp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.Local)

		sink, err := NewBuilder().
			LogFile(filepath.Join(t.TempDir(), "c.log")).
			Console(&stdout, &stdout).
			Clock(func() time.Time { return stamp }).
			Build()
		require.NoError(t, err)
		defer sink.Close()

		sink.LogInfo("tick")
		assert.Equal(t, "[CONSOLE] [2030-01-02 03:04:05] [main] [INFO] tick\n", stdout.String())
	})
}
