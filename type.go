package logsink

import (
	"strconv"
	"time"

	"github.com/lixenwraith/logsink/formatter"
)

// Severity is the ordered importance of a record
type Severity int64

// String returns the tag written between brackets in the log line
func (s Severity) String() string {
	switch s {
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "LEVEL(" + strconv.FormatInt(int64(s), 10) + ")"
	}
}

// valid reports whether s is one of the three defined levels
func (s Severity) valid() bool {
	switch s {
	case LevelInfo, LevelWarning, LevelError:
		return true
	}
	return false
}

// Record is a single log entry, immutable once constructed
type Record struct {
	Time     time.Time
	Origin   string
	Severity Severity
	Message  string
}

// ParseRecord reconstructs a record from a log line.
// The severity tag must be one of INFO, WARNING or ERROR exactly.
func ParseRecord(line string) (Record, error) {
	e, err := formatter.Parse(line)
	if err != nil {
		return Record{}, err
	}
	sev, err := severityFromTag(e.Severity)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Time:     e.Time,
		Origin:   e.Origin,
		Severity: sev,
		Message:  e.Message,
	}, nil
}
