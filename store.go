package logsink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// store owns the active log file and the rotation index.
// All methods assume the owning sink's mutex is held.
type store struct {
	path      string
	maxSize   int64
	nextIndex int

	file *os.File
	size int64
}

// newStore creates a store; the file is opened on first append
func newStore(path string, maxSize int64) *store {
	return &store{
		path:      path,
		maxSize:   maxSize,
		nextIndex: 1,
	}
}

// currentSize returns the active file size, from the open handle when there is one
func (st *store) currentSize() (int64, bool) {
	if st.file != nil {
		return st.size, true
	}
	info, err := os.Stat(st.path)
	if err != nil {
		return 0, false
	}
	return info.Size(), true
}

// needsRotation reports whether the active file is over the threshold
func (st *store) needsRotation() bool {
	if st.maxSize <= 0 {
		return false
	}
	size, ok := st.currentSize()
	return ok && size > st.maxSize
}

// open opens or creates the active file for appending
func (st *store) open() error {
	if dir := filepath.Dir(st.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory '%s': %w", dir, err)
		}
	}

	file, err := os.OpenFile(st.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open/create log file '%s': %w", st.path, err)
	}

	st.size = 0
	if info, err := file.Stat(); err == nil {
		st.size = info.Size()
	}
	st.file = file
	return nil
}

// append writes one complete line to the active file
func (st *store) append(line []byte) error {
	if st.file == nil {
		if err := st.open(); err != nil {
			return fmtErrorf("%w: %w", ErrWrite, err)
		}
	}

	n, err := st.file.Write(line)
	st.size += int64(n)
	if err != nil {
		// Drop the handle so the next append reopens the path
		_ = st.file.Close()
		st.file = nil
		return fmtErrorf("%w: failed to write to log file '%s': %w", ErrWrite, st.path, err)
	}
	return nil
}

// rotate renames the active file to the next free archive name and opens a
// fresh active file. On failure the active file is kept so the triggering
// record can still be written to it. Returns the archive path.
func (st *store) rotate() (string, error) {
	if st.file != nil {
		if err := st.file.Close(); err != nil {
			return "", fmtErrorf("%w: failed to close log file before rotation: %w", ErrRotation, err)
		}
		st.file = nil
	}

	archivePath, index := st.nextArchive()
	if err := os.Rename(st.path, archivePath); err != nil {
		return "", fmtErrorf("%w: failed to rename log file from '%s' to '%s': %w",
			ErrRotation, st.path, archivePath, err)
	}
	st.nextIndex = index + 1

	if err := st.open(); err != nil {
		return archivePath, fmtErrorf("%w: failed to create new log file after rotation: %w", ErrRotation, err)
	}
	return archivePath, nil
}

// nextArchive returns the first archive path at or after nextIndex that does not exist yet
func (st *store) nextArchive() (string, int) {
	index := st.nextIndex
	for {
		candidate := archivePath(st.path, index)
		// Any stat failure other than "exists" leaves the decision to rename
		if _, err := os.Lstat(candidate); err != nil {
			return candidate, index
		}
		index++
	}
}

// close releases the active file handle
func (st *store) close() error {
	if st.file == nil {
		return nil
	}
	var finalErr error
	if err := st.file.Sync(); err != nil {
		finalErr = fmtErrorf("failed to sync log file '%s': %w", st.path, err)
	}
	if err := st.file.Close(); err != nil {
		finalErr = combineErrors(finalErr, fmtErrorf("failed to close log file '%s': %w", st.path, err))
	}
	st.file = nil
	return finalErr
}

// archivePath builds "<dir>/<stem>_<index><ext>" for a log path
func archivePath(path string, index int) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = defaultArchiveExt
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, index, ext))
}
