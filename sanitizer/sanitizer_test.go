package sanitizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicies(t *testing.T) {
	testCases := []struct {
		name     string
		policy   PolicyPreset
		input    string
		expected string
	}{
		{
			name:     "raw passes through",
			policy:   PolicyRaw,
			input:    "hello\x00world\n",
			expected: "hello\x00world\n",
		},
		{
			name:     "message encodes newline",
			policy:   PolicyMessage,
			input:    "line1\nline2",
			expected: "line1<0a>line2",
		},
		{
			name:     "message encodes control chars",
			policy:   PolicyMessage,
			input:    "bell\x07tab\x09form\x0c",
			expected: "bell<07>tab<09>form<0c>",
		},
		{
			name:     "message keeps printable and brackets",
			policy:   PolicyMessage,
			input:    "Hello [World] 123!@#",
			expected: "Hello [World] 123!@#",
		},
		{
			name:     "message encodes multi-byte control",
			policy:   PolicyMessage,
			input:    "line1\u0085line2", // NEXT LINE (C2 85)
			expected: "line1<c285>line2",
		},
		{
			name:     "message preserves UTF-8",
			policy:   PolicyMessage,
			input:    "Hello 世界 ✓",
			expected: "Hello 世界 ✓",
		},
		{
			name:     "origin encodes brackets",
			policy:   PolicyOrigin,
			input:    "worker[3]",
			expected: "worker<5b>3<5d>",
		},
		{
			name:     "origin encodes carriage return",
			policy:   PolicyOrigin,
			input:    "w\r1",
			expected: "w<0d>1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := New().Policy(tc.policy)
			assert.Equal(t, tc.expected, s.Sanitize(tc.input))
		})
	}
}

func TestCustomRules(t *testing.T) {
	t.Run("strip whitespace", func(t *testing.T) {
		s := New().Rule(FilterWhitespace, TransformStrip)
		assert.Equal(t, "abc", s.Sanitize("a b\tc"))
	})

	t.Run("control to space", func(t *testing.T) {
		s := New().Rule(FilterControl, TransformSpace)
		assert.Equal(t, "a b c", s.Sanitize("a\nb\rc"))
	})

	t.Run("first rule wins", func(t *testing.T) {
		s := New().
			Rule(FilterControl, TransformStrip).
			Rule(FilterNonPrintable, TransformHexEncode)
		assert.Equal(t, "ab", s.Sanitize("a\nb"))
	})
}

func TestSanitizerBufferReuse(t *testing.T) {
	s := New().Policy(PolicyMessage)

	long := strings.Repeat("x", 1024) + "\n"
	assert.Equal(t, strings.Repeat("x", 1024)+"<0a>", s.Sanitize(long))

	// A shorter input after a longer one must not leak old bytes
	assert.Equal(t, "ok", s.Sanitize("ok"))
}
