package logsink

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lixenwraith/logsink/formatter"
)

// Sink accepts leveled records from any number of goroutines and persists them.
// Filtering, rotation, the file append and the console echo of one call run
// as a single critical section.
type Sink struct {
	mu        sync.Mutex
	cfg       *Config
	store     *store
	formatter *formatter.Formatter
	stdout    io.Writer
	stderr    io.Writer
	now       func() time.Time
	state     State
}

// Option customizes a Sink at construction
type Option func(*Sink)

// WithStdout sets the console stream for INFO and WARNING records
func WithStdout(w io.Writer) Option {
	return func(s *Sink) {
		s.stdout = w
	}
}

// WithStderr sets the console stream for ERROR records and internal diagnostics
func WithStderr(w io.Writer) Option {
	return func(s *Sink) {
		s.stderr = w
	}
}

// WithClock sets the time source for record timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Sink) {
		s.now = now
	}
}

// New creates a sink for the given configuration.
// A nil cfg uses the defaults. The log file is created on the first write.
func New(cfg *Config, opts ...Option) (*Sink, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmtErrorf("invalid configuration: %w", err)
	}
	return newSink(cfg.Clone(), opts...), nil
}

// newSink assumes cfg is validated and owned by the sink
func newSink(cfg *Config, opts ...Option) *Sink {
	s := &Sink{
		cfg:       cfg,
		store:     newStore(cfg.LogFile, cfg.MaxSizeBytes),
		formatter: formatter.New(),
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Log writes msg at the given severity under the sink's default origin
func (s *Sink) Log(severity Severity, msg string) {
	s.log(s.cfg.Origin, severity, msg)
}

// LogInfo logs a message at INFO
func (s *Sink) LogInfo(msg string) {
	s.Log(LevelInfo, msg)
}

// LogWarning logs a message at WARNING
func (s *Sink) LogWarning(msg string) {
	s.Log(LevelWarning, msg)
}

// LogError logs a message at ERROR
func (s *Sink) LogError(msg string) {
	s.Log(LevelError, msg)
}

// Info logs args as a space-separated message at INFO
func (s *Sink) Info(args ...any) {
	s.Log(LevelInfo, s.formatter.FormatArgs(args...))
}

// Warning logs args as a space-separated message at WARNING
func (s *Sink) Warning(args ...any) {
	s.Log(LevelWarning, s.formatter.FormatArgs(args...))
}

// Error logs args as a space-separated message at ERROR
func (s *Sink) Error(args ...any) {
	s.Log(LevelError, s.formatter.FormatArgs(args...))
}

// SetLevel changes the minimum severity. The change is recorded as an INFO
// record, which is only written if INFO passes the new minimum.
func (s *Sink) SetLevel(severity Severity) {
	if !severity.valid() {
		internalLog(s.stderr, "warning - ignoring invalid severity %s", severity)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.Level = severity
	s.logLocked(s.cfg.Origin, LevelInfo, "log level changed to "+severity.String())
}

// Level returns the current minimum severity
func (s *Sink) Level() Severity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Level
}

// Path returns the active log file path
func (s *Sink) Path() string {
	return s.cfg.LogFile
}

// Config returns a copy of the current configuration
func (s *Sink) Config() *Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

// Stats returns a snapshot of the sink's counters
func (s *Sink) Stats() Stats {
	return s.state.snapshot()
}

// Close syncs and closes the active file. Later writes reopen it.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.close()
}

// log handles the core logging logic.
// Severities outside the three levels are reported and counted as filtered.
func (s *Sink) log(origin string, severity Severity, msg string) {
	if !severity.valid() {
		s.state.Filtered.Add(1)
		internalLog(s.stderr, "warning - dropping record with invalid severity %s", severity)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.logLocked(origin, severity, msg)
}

// logLocked filters, rotates if needed and writes; s.mu must be held
func (s *Sink) logLocked(origin string, severity Severity, msg string) {
	if severity < s.cfg.Level {
		s.state.Filtered.Add(1)
		return
	}

	if s.store.needsRotation() {
		s.rotateLocked(origin)
	}

	s.writeLocked(origin, severity, msg)
}

// rotateLocked rotates the store and records the rotation in the new file
func (s *Sink) rotateLocked(origin string) {
	archive, err := s.store.rotate()
	if archive != "" {
		s.state.Rotations.Add(1)
	}
	if err != nil {
		s.state.RotationErrors.Add(1)
		internalLog(s.stderr, "%v", err)
		if archive == "" {
			return
		}
	}

	if LevelInfo >= s.cfg.Level {
		s.writeLocked(origin, LevelInfo, "log file rotated to "+filepath.Base(archive))
	}
}

// writeLocked formats, appends and echoes one record
func (s *Sink) writeLocked(origin string, severity Severity, msg string) {
	rec := Record{
		Time:     s.now().Local().Truncate(time.Second),
		Origin:   origin,
		Severity: severity,
		Message:  msg,
	}
	line := s.formatter.Line(formatter.Entry{
		Time:     rec.Time,
		Origin:   rec.Origin,
		Severity: rec.Severity.String(),
		Message:  rec.Message,
	})

	err := s.store.append(line)

	if s.cfg.EnableConsole {
		s.echo(severity, line)
	}

	if err != nil {
		s.state.WriteErrors.Add(1)
		internalLog(s.stderr, "%v", err)
		return
	}
	s.state.Written.Add(1)
}

// echo mirrors a line to the console stream for its severity
func (s *Sink) echo(severity Severity, line []byte) {
	w := s.stdout
	if severity >= LevelError {
		w = s.stderr
	}
	if w == nil {
		return
	}
	buf := make([]byte, 0, len(formatter.ConsolePrefix)+len(line))
	buf = append(buf, formatter.ConsolePrefix...)
	buf = append(buf, line...)
	_, _ = w.Write(buf)
}

// Origin binds an origin identifier to the sink, standing in for a thread
// or task name in every record logged through it
type Origin struct {
	sink *Sink
	name string
}

// Origin returns a handle that logs under the given origin identifier
func (s *Sink) Origin(name string) *Origin {
	return &Origin{sink: s, name: name}
}

// Name returns the origin identifier
func (o *Origin) Name() string {
	return o.name
}

// Log writes msg at the given severity under this origin
func (o *Origin) Log(severity Severity, msg string) {
	o.sink.log(o.name, severity, msg)
}

// LogInfo logs a message at INFO
func (o *Origin) LogInfo(msg string) {
	o.Log(LevelInfo, msg)
}

// LogWarning logs a message at WARNING
func (o *Origin) LogWarning(msg string) {
	o.Log(LevelWarning, msg)
}

// LogError logs a message at ERROR
func (o *Origin) LogError(msg string) {
	o.Log(LevelError, msg)
}

// Info logs args as a space-separated message at INFO
func (o *Origin) Info(args ...any) {
	o.Log(LevelInfo, o.sink.formatter.FormatArgs(args...))
}

// Warning logs args as a space-separated message at WARNING
func (o *Origin) Warning(args ...any) {
	o.Log(LevelWarning, o.sink.formatter.FormatArgs(args...))
}

// Error logs args as a space-separated message at ERROR
func (o *Origin) Error(args ...any) {
	o.Log(LevelError, o.sink.formatter.FormatArgs(args...))
}
