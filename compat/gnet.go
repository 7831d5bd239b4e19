package compat

import (
	"fmt"
	"os"

	"github.com/panjf2000/gnet/v2/pkg/logging"

	"github.com/lixenwraith/logsink"
)

var _ logging.Logger = (*GnetAdapter)(nil)

// GnetAdapter wraps an Emitter to implement the gnet logging.Logger interface
type GnetAdapter struct {
	emitter      Emitter
	prefix       string
	fatalHandler func(msg string) // Customizable fatal behavior
}

// NewGnetAdapter creates a new gnet-compatible logger adapter
func NewGnetAdapter(emitter Emitter, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		emitter: emitter,
		prefix:  "gnet: ",
		fatalHandler: func(msg string) {
			os.Exit(1) // Default behavior matches gnet expectations
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

// WithGnetPrefix sets the text prepended to every message
func WithGnetPrefix(prefix string) GnetOption {
	return func(a *GnetAdapter) {
		a.prefix = prefix
	}
}

// Debugf logs at INFO, the sink has no debug level
func (a *GnetAdapter) Debugf(format string, args ...any) {
	emit(a.emitter, logsink.LevelInfo, a.prefix+fmt.Sprintf(format, args...))
}

// Infof logs at INFO with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	emit(a.emitter, logsink.LevelInfo, a.prefix+fmt.Sprintf(format, args...))
}

// Warnf logs at WARNING with printf-style formatting
func (a *GnetAdapter) Warnf(format string, args ...any) {
	emit(a.emitter, logsink.LevelWarning, a.prefix+fmt.Sprintf(format, args...))
}

// Errorf logs at ERROR with printf-style formatting
func (a *GnetAdapter) Errorf(format string, args ...any) {
	emit(a.emitter, logsink.LevelError, a.prefix+fmt.Sprintf(format, args...))
}

// Fatalf logs at ERROR and triggers the fatal handler.
// Sink writes are synchronous, so the record is on disk before the handler runs.
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	emit(a.emitter, logsink.LevelError, a.prefix+"fatal: "+msg)

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}
