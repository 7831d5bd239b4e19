// Package compat adapts a sink to the logger interfaces of gnet and fasthttp.
package compat

import (
	"github.com/lixenwraith/logsink"
)

// Emitter is the logging surface the adapters write through.
// Both *logsink.Sink and *logsink.Origin satisfy it.
type Emitter interface {
	LogInfo(msg string)
	LogWarning(msg string)
	LogError(msg string)
}

var (
	_ Emitter = (*logsink.Sink)(nil)
	_ Emitter = (*logsink.Origin)(nil)
)

// emit routes msg to the emitter method for severity
func emit(e Emitter, severity logsink.Severity, msg string) {
	switch {
	case severity >= logsink.LevelError:
		e.LogError(msg)
	case severity >= logsink.LevelWarning:
		e.LogWarning(msg)
	default:
		e.LogInfo(msg)
	}
}
