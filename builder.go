package logsink

import (
	"io"
	"time"
)

// Builder provides a fluent API for building a sink.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg  *Config
	opts []Option
	err  error // Accumulate errors for deferred handling
}

// NewBuilder creates a new builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// FromFile starts from the configuration in path.
// A file that cannot be loaded fails Build.
func (b *Builder) FromFile(path string) *Builder {
	if b.err != nil {
		return b
	}
	cfg, err := ParseConfig(path)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg = cfg
	return b
}

// Build creates a new Sink with the specified configuration.
func (b *Builder) Build() (*Sink, error) {
	if b.err != nil {
		return nil, b.err
	}
	return New(b.cfg, b.opts...)
}

// Level sets the minimum severity.
func (b *Builder) Level(level Severity) *Builder {
	b.cfg.Level = level
	return b
}

// LevelString sets the minimum severity from its name.
func (b *Builder) LevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	sev, err := ParseSeverity(level)
	if err != nil {
		b.err = fmtErrorf("%w", err)
		return b
	}
	b.cfg.Level = sev
	return b
}

// LogFile sets the active log file path.
func (b *Builder) LogFile(path string) *Builder {
	b.cfg.LogFile = path
	return b
}

// MaxSizeKB sets the rotation threshold in KiB, 0 disables rotation.
func (b *Builder) MaxSizeKB(size int64) *Builder {
	b.cfg.MaxSizeBytes = size * sizeMultiplier
	return b
}

// MaxSizeBytes sets the rotation threshold in bytes.
func (b *Builder) MaxSizeBytes(size int64) *Builder {
	b.cfg.MaxSizeBytes = size
	return b
}

// EnableConsole enables mirroring records to stdout/stderr.
func (b *Builder) EnableConsole(enable bool) *Builder {
	b.cfg.EnableConsole = enable
	return b
}

// Origin sets the origin identifier of the sink's own methods.
func (b *Builder) Origin(name string) *Builder {
	b.cfg.Origin = name
	return b
}

// Console redirects the console streams.
func (b *Builder) Console(stdout, stderr io.Writer) *Builder {
	b.opts = append(b.opts, WithStdout(stdout), WithStderr(stderr))
	return b
}

// Clock sets the time source for record timestamps.
func (b *Builder) Clock(now func() time.Time) *Builder {
	b.opts = append(b.opts, WithClock(now))
	return b
}

// Example usage:
// sink, err := logsink.NewBuilder().
//
//	LogFile("/var/log/app/app.log").
//	LevelString("warning").
//	MaxSizeKB(512).
//	Build()
//
// if err == nil {
//
//	 defer sink.Close()
//	 sink.LogWarning("disk usage above 80%")
//
// }
