package logsink

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig reloads the minimum severity whenever the config file at path
// changes, until ctx is done. The file's directory is watched so editors that
// replace the file atomically are followed. Only the level is applied live;
// changes to other keys are reported and need a new sink.
func (s *Sink) WatchConfig(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmtErrorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmtErrorf("failed to watch config directory '%s': %w", dir, err)
	}

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				s.reloadConfig(path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			internalLog(s.stderr, "warning - config watcher: %v", err)
		}
	}
}

// reloadConfig applies the level from path; a file that fails to load is ignored
func (s *Sink) reloadConfig(path string) {
	next, err := ParseConfig(path)
	if err != nil {
		internalLog(s.stderr, "%v; config reload skipped", err)
		return
	}

	current := s.Config()
	if next.LogFile != current.LogFile || next.MaxSizeBytes != current.MaxSizeBytes {
		internalLog(s.stderr, "warning - logfile and maxsize changes in '%s' take effect on restart", path)
	}
	if next.Level != current.Level {
		s.SetLevel(next.Level)
	}
}
