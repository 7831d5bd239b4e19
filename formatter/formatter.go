// Package formatter renders log records into the bracketed line format and
// parses such lines back into their fields.
//
// A line looks like:
//
//	[2006-01-02 15:04:05] [origin] [SEVERITY] message
//
// Origins and messages are sanitized on the way out so every record is a
// single line and the bracket delimiters are unambiguous on the way back in.
package formatter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/davecgh/go-spew/spew"

	"github.com/lixenwraith/logsink/sanitizer"
)

// TimestampLayout is the fixed, second precision timestamp of every line
const TimestampLayout = "2006-01-02 15:04:05"

// ConsolePrefix marks a line echoed to the console
const ConsolePrefix = "[CONSOLE] "

// ErrMalformedLine is returned by Parse for lines that do not follow the format
var ErrMalformedLine = errors.New("malformed log line")

// Entry is the textual form of a record
type Entry struct {
	Time     time.Time
	Origin   string
	Severity string
	Message  string
}

// Formatter manages the buffered writing of log lines.
// It is not safe for concurrent use; the sink serializes access.
type Formatter struct {
	message *sanitizer.Sanitizer
	origin  *sanitizer.Sanitizer
	dumper  *spew.ConfigState
	buf     []byte
}

// New creates a formatter with the default message and origin policies
func New() *Formatter {
	return &Formatter{
		message: sanitizer.New().Policy(sanitizer.PolicyMessage),
		origin:  sanitizer.New().Policy(sanitizer.PolicyOrigin),
		dumper: &spew.ConfigState{
			Indent:                  " ",
			MaxDepth:                10,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		},
		buf: make([]byte, 0, 1024),
	}
}

// Line renders an entry as a newline terminated line.
// The returned slice is reused by the next call.
func (f *Formatter) Line(e Entry) []byte {
	f.buf = f.buf[:0]

	f.buf = append(f.buf, '[')
	f.buf = e.Time.AppendFormat(f.buf, TimestampLayout)
	f.buf = append(f.buf, "] ["...)
	f.buf = append(f.buf, f.origin.Sanitize(e.Origin)...)
	f.buf = append(f.buf, "] ["...)
	f.buf = append(f.buf, e.Severity...)
	f.buf = append(f.buf, "] "...)
	f.buf = append(f.buf, f.message.Sanitize(e.Message)...)
	f.buf = append(f.buf, '\n')

	return f.buf
}

// FormatArgs renders args as space-separated values.
// Types without a natural text form are dumped with go-spew.
// FormatArgs touches no shared buffer and is safe for concurrent use.
func (f *Formatter) FormatArgs(args ...any) string {
	var sb strings.Builder
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(' ')
		}
		f.writeValue(&sb, arg)
	}
	return sb.String()
}

// writeValue converts any value to its text representation
func (f *Formatter) writeValue(sb *strings.Builder, v any) {
	switch val := v.(type) {
	case string:
		sb.WriteString(val)
	case []byte:
		sb.Write(val)
	case rune:
		var runeStr [utf8.UTFMax]byte
		n := utf8.EncodeRune(runeStr[:], val)
		sb.Write(runeStr[:n])
	case int:
		sb.WriteString(strconv.FormatInt(int64(val), 10))
	case int64:
		sb.WriteString(strconv.FormatInt(val, 10))
	case uint:
		sb.WriteString(strconv.FormatUint(uint64(val), 10))
	case uint64:
		sb.WriteString(strconv.FormatUint(val, 10))
	case float32:
		sb.WriteString(strconv.FormatFloat(float64(val), 'f', -1, 32))
	case float64:
		sb.WriteString(strconv.FormatFloat(val, 'f', -1, 64))
	case bool:
		sb.WriteString(strconv.FormatBool(val))
	case nil:
		sb.WriteString("nil")
	case time.Time:
		sb.WriteString(val.Format(TimestampLayout))
	case error:
		sb.WriteString(val.Error())
	case fmt.Stringer:
		sb.WriteString(val.String())
	default:
		// Structs, maps, pointers, slices: single line dump with types dereferenced
		sb.WriteString(f.dumper.Sprintf("%+v", val))
	}
}

// Parse splits a line into its fields using the bracket delimiters.
// The timestamp is parsed in the local time zone.
func Parse(line string) (Entry, error) {
	line = strings.TrimRight(line, "\r\n")

	ts, rest, ok := nextField(line)
	if !ok {
		return Entry{}, fmt.Errorf("%w: missing timestamp", ErrMalformedLine)
	}
	t, err := time.ParseInLocation(TimestampLayout, ts, time.Local)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}

	origin, rest, ok := nextField(rest)
	if !ok {
		return Entry{}, fmt.Errorf("%w: missing origin", ErrMalformedLine)
	}

	severity, rest, ok := nextField(rest)
	if !ok || severity == "" {
		return Entry{}, fmt.Errorf("%w: missing severity", ErrMalformedLine)
	}

	return Entry{
		Time:     t,
		Origin:   origin,
		Severity: severity,
		Message:  rest,
	}, nil
}

// nextField consumes one "[field]" and the single space separator after it
func nextField(s string) (field, rest string, ok bool) {
	if len(s) == 0 || s[0] != '[' {
		return "", s, false
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return "", s, false
	}
	field = s[1:end]
	rest = s[end+1:]
	if len(rest) > 0 {
		if rest[0] != ' ' {
			return "", s, false
		}
		rest = rest[1:]
	}
	return field, rest, true
}
