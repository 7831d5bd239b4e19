package logsink

import (
	"os"
	"sync"
)

// Process-wide sink behind the package-level functions
var (
	defaultSink     *Sink
	defaultSinkOnce sync.Once
)

// Instance returns the process-wide sink, configured from DefaultConfigPath
// in the working directory on first use. Concurrent first calls construct
// exactly one sink.
func Instance() *Sink {
	return InstanceFrom(DefaultConfigPath)
}

// InstanceFrom is Instance with an explicit config path. The path is only
// read by the call that constructs the sink; later calls return it unchanged.
func InstanceFrom(path string) *Sink {
	defaultSinkOnce.Do(func() {
		cfg := LoadConfig(path)
		s, err := New(cfg)
		if err != nil {
			internalLog(os.Stderr, "%v; using defaults", err)
			s = newSink(DefaultConfig())
		}
		defaultSink = s
	})
	return defaultSink
}

// Default package-level functions that delegate to the process-wide sink

// SetLevel changes the minimum severity of the process-wide sink
func SetLevel(severity Severity) {
	Instance().SetLevel(severity)
}

// Log writes a message at the given severity
func Log(severity Severity, msg string) {
	Instance().Log(severity, msg)
}

// LogInfo logs a message at INFO
func LogInfo(msg string) {
	Instance().LogInfo(msg)
}

// LogWarning logs a message at WARNING
func LogWarning(msg string) {
	Instance().LogWarning(msg)
}

// LogError logs a message at ERROR
func LogError(msg string) {
	Instance().LogError(msg)
}

// Info logs args at INFO
func Info(args ...any) {
	Instance().Info(args...)
}

// Warning logs args at WARNING
func Warning(args ...any) {
	Instance().Warning(args...)
}

// Error logs args at ERROR
func Error(args ...any) {
	Instance().Error(args...)
}
