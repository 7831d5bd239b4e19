package logsink

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input    string
		expected Severity
		wantErr  bool
	}{
		{"INFO", LevelInfo, false},
		{"info", LevelInfo, false},
		{" Warning ", LevelWarning, false},
		{"warn", LevelWarning, false},
		{"ERROR", LevelError, false},
		{"debug", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sev, err := ParseSeverity(tt.input)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSeverity)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, sev)
			}
		})
	}
}

func TestSeverityFromTag(t *testing.T) {
	for _, sev := range []Severity{LevelInfo, LevelWarning, LevelError} {
		got, err := severityFromTag(sev.String())
		require.NoError(t, err)
		assert.Equal(t, sev, got)
	}

	for _, tag := range []string{"info", "Warning", "WARN", " ERROR", "LEVEL(100)", ""} {
		_, err := severityFromTag(tag)
		assert.ErrorIs(t, err, ErrInvalidSeverity, "tag %q", tag)
	}
}

func TestSeverityOrder(t *testing.T) {
	assert.True(t, LevelInfo < LevelWarning)
	assert.True(t, LevelWarning < LevelError)
	assert.Equal(t, "WARNING", LevelWarning.String())
	assert.Equal(t, "LEVEL(2)", Severity(2).String())
}

func TestParseKeyValue(t *testing.T) {
	tests := []struct {
		input     string
		wantKey   string
		wantValue string
		wantErr   bool
	}{
		{"level=INFO", "level", "INFO", false},
		{" logfile = /var/log/app.log ", "logfile", "/var/log/app.log", false},
		{"maxsize=", "maxsize", "", false},
		{"a=b=c", "a", "b=c", false},
		{"novalue", "", "", true},
		{"=value", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			key, value, err := parseKeyValue(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	err := fmtErrorf("%w: disk gone", ErrWrite)
	assert.Equal(t, "logsink: write failed: disk gone", err.Error())
	assert.ErrorIs(t, err, ErrWrite)

	combined := combineErrors(err, fmtErrorf("%w: rename", ErrRotation))
	assert.ErrorIs(t, combined, ErrWrite)
	assert.ErrorIs(t, combined, ErrRotation)
	assert.Equal(t, err, combineErrors(err, nil))
	assert.Nil(t, combineErrors(nil, nil))

	var buf bytes.Buffer
	internalLog(&buf, "failed to write: %v", errors.New("eio"))
	assert.Equal(t, "logsink: failed to write: eio\n", buf.String())

	buf.Reset()
	internalLog(&buf, "%v", err)
	assert.Equal(t, "logsink: write failed: disk gone\n", buf.String(), "An existing prefix should not be repeated")
}
