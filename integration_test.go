package logsink

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFullLifecycle drives concurrent origins through rotation and reads
// everything back across the active file and its archives
func TestFullLifecycle(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "service.log")

	sink, err := NewBuilder().
		LogFile(logFile).
		LevelString("info").
		MaxSizeKB(1).
		EnableConsole(false).
		Console(io.Discard, io.Discard).
		Build()
	require.NoError(t, err, "Sink creation with builder should succeed")
	defer func() {
		assert.NoError(t, sink.Close(), "Sink close should be clean")
	}()

	const workers = 4
	const perWorker = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			origin := sink.Origin(fmt.Sprintf("w%d", id))
			for i := 0; i < perWorker; i++ {
				origin.LogWarning(fmt.Sprintf("event %d %s", i, strings.Repeat(".", 32)))
			}
		}(w)
	}
	wg.Wait()

	stats := sink.Stats()
	require.Greater(t, stats.Rotations, uint64(1), "1 KiB threshold should rotate several times")
	assert.Zero(t, stats.RotationErrors)
	assert.Zero(t, stats.WriteErrors)

	reader := NewReader(logFile)
	archives, err := reader.Archives()
	require.NoError(t, err)
	assert.Len(t, archives, int(stats.Rotations))

	// Collect in rotation order: oldest archive first, active file last
	var records []Record
	for _, a := range archives {
		recs, err := NewReader(a.Path).Records(Filter{})
		require.NoError(t, err)
		assert.LessOrEqual(t, a.Size, int64(1024+200), "Archives exceed the threshold by at most one record")
		records = append(records, recs...)
	}
	active, err := reader.Records(Filter{})
	require.NoError(t, err)
	records = append(records, active...)

	warnings := 0
	rotationNotes := 0
	for _, rec := range records {
		switch {
		case rec.Severity == LevelWarning:
			warnings++
		case strings.HasPrefix(rec.Message, "log file rotated to "):
			rotationNotes++
		default:
			t.Errorf("unexpected record %+v", rec)
		}
	}
	assert.Equal(t, workers*perWorker, warnings, "No record is lost across rotations")
	assert.Equal(t, int(stats.Rotations), rotationNotes)
	assert.Equal(t, uint64(workers*perWorker+rotationNotes), stats.Written)

	// Level change at runtime, visible to the reader
	sink.SetLevel(LevelError)
	sink.LogWarning("dropped")
	sink.LogError("kept")

	errs, err := reader.ReadFiltered(LevelError)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "kept")
}
