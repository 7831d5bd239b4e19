package logsink

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for the watcher goroutine
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// replaceFile swaps content in with a rename so the watcher never sees a half-written file
func replaceFile(t *testing.T, path, content string) {
	t.Helper()
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(content), 0644))
	require.NoError(t, os.Rename(tmp, path))
}

func TestWatchConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "logger_config.txt")
	require.NoError(t, os.WriteFile(cfgPath, []byte("level=INFO\n"), 0644))

	stderr := &syncBuffer{}
	sink, logFile := createTestSink(t, func(b *Builder) { b.Console(&syncBuffer{}, stderr) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sink.WatchConfig(ctx, cfgPath) }()

	// Rewrite until the watcher is registered and picks the change up
	assert.Eventually(t, func() bool {
		tmp := cfgPath + ".tmp"
		if os.WriteFile(tmp, []byte("level=WARNING\n"), 0644) == nil {
			_ = os.Rename(tmp, cfgPath)
		}
		return sink.Level() == LevelWarning
	}, 5*time.Second, 50*time.Millisecond)

	// A broken file leaves the level alone
	replaceFile(t, cfgPath, "level=NOISY\n")
	assert.Eventually(t, func() bool {
		return bytes.Contains([]byte(stderr.String()), []byte("config reload skipped"))
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, LevelWarning, sink.Level())

	// Other keys are not applied live
	replaceFile(t, cfgPath, "level=ERROR\nlogfile=elsewhere.log\n")
	assert.Eventually(t, func() bool {
		return sink.Level() == LevelError
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, logFile, sink.Path())
	assert.Contains(t, stderr.String(), "take effect on restart")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("WatchConfig did not return after cancel")
	}
}

func TestWatchConfigMissingDirectory(t *testing.T) {
	sink, _ := createTestSink(t)

	err := sink.WatchConfig(context.Background(), filepath.Join(t.TempDir(), "nope", "cfg.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch config directory")
}
