package compat

import (
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/logsink"
)

var _ fasthttp.Logger = (*FastHTTPAdapter)(nil)

// FastHTTPAdapter wraps an Emitter to implement the fasthttp Logger interface
type FastHTTPAdapter struct {
	emitter       Emitter
	prefix        string
	defaultLevel  logsink.Severity
	levelDetector func(string) (logsink.Severity, bool) // Detects the level from message content
}

// NewFastHTTPAdapter creates a new fasthttp-compatible logger adapter
func NewFastHTTPAdapter(emitter Emitter, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		emitter:       emitter,
		prefix:        "fasthttp: ",
		defaultLevel:  logsink.LevelInfo,
		levelDetector: DetectLogLevel,
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the level used when no level is detected
func WithDefaultLevel(level logsink.Severity) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector sets a custom function to detect the level from message content
func WithLevelDetector(detector func(string) (logsink.Severity, bool)) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// WithFastHTTPPrefix sets the text prepended to every message
func WithFastHTTPPrefix(prefix string) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.prefix = prefix
	}
}

// Printf implements fasthttp's Logger interface
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected, ok := a.levelDetector(msg); ok {
			level = detected
		}
	}

	emit(a.emitter, level, a.prefix+msg)
}

// DetectLogLevel guesses the level from keywords in the message
func DetectLogLevel(msg string) (logsink.Severity, bool) {
	msgLower := strings.ToLower(msg)

	if strings.Contains(msgLower, "error") ||
		strings.Contains(msgLower, "failed") ||
		strings.Contains(msgLower, "fatal") ||
		strings.Contains(msgLower, "panic") {
		return logsink.LevelError, true
	}

	if strings.Contains(msgLower, "warn") ||
		strings.Contains(msgLower, "deprecated") {
		return logsink.LevelWarning, true
	}

	return 0, false
}
