package logsink

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Error classes of the logging subsystem. None of them escape a logging call;
// they are reported on the error stream or returned by the explicit parse APIs.
var (
	ErrConfigLoad      = errors.New("config load failed")
	ErrRotation        = errors.New("rotation failed")
	ErrWrite           = errors.New("write failed")
	ErrInvalidSeverity = errors.New("invalid severity")
)

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "logsink: ") {
		format = "logsink: " + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return errors.Join(err1, err2)
}

// internalLog writes a diagnostic line for the logging subsystem itself
func internalLog(w io.Writer, format string, args ...any) {
	if w == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if !strings.HasPrefix(msg, "logsink: ") {
		msg = "logsink: " + msg
	}
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	_, _ = io.WriteString(w, msg)
}

// parseKeyValue splits a "key=value" string.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid line '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmt.Errorf("key cannot be empty in line '%s'", arg)
	}
	return key, value, nil
}

// severityFromTag maps an exact severity tag, as written in log lines and
// config files, to its constant
func severityFromTag(tag string) (Severity, error) {
	for _, sev := range []Severity{LevelInfo, LevelWarning, LevelError} {
		if tag == sev.String() {
			return sev, nil
		}
	}
	return 0, fmt.Errorf("%w: '%s' (use INFO, WARNING, ERROR)", ErrInvalidSeverity, tag)
}

// ParseSeverity converts a severity name typed by a user to its constant.
// Names are case-insensitive and "warn" is accepted for WARNING.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "INFO":
		return LevelInfo, nil
	case "WARNING", "WARN":
		return LevelWarning, nil
	case "ERROR":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("%w: '%s' (use INFO, WARNING, ERROR)", ErrInvalidSeverity, name)
	}
}
