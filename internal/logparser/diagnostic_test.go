package logparser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDiagnosticContext(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		token    string
		expected bool
	}{
		{
			name:     "Plain verdict in log line",
			line:     "[INFO] status ok",
			token:    "ok",
			expected: false,
		},
		{
			name:     "Unwrap on error value",
			line:     "called `Result::unwrap()` on an `Err` value: error",
			token:    "error",
			expected: true,
		},
		{
			name:     "Panic message",
			line:     "thread 'main' panicked: FAILED",
			token:    "FAILED",
			expected: true,
		},
		{
			name:     "Quoted value",
			line:     `status: "FAILED"`,
			token:    "FAILED",
			expected: true,
		},
		{
			name:     "Error kind field",
			line:     "Os { code: 2, kind: NotFound, message: error }",
			token:    "error",
			expected: true,
		},
		{
			name:     "Wrapped in call",
			line:     "returned Err(error) from handler",
			token:    "error",
			expected: true,
		},
		{
			name:     "Prose continuation",
			line:     "[WARN] error while reading config",
			token:    "error",
			expected: true,
		},
		{
			name:     "Hyphenated crate name",
			line:     "Compiling error-chain v0.12.4",
			token:    "error",
			expected: true,
		},
		{
			name:     "Standalone",
			line:     "ok",
			token:    "ok",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := strings.LastIndex(tt.line, tt.token)
			assert.Equal(t, tt.expected, IsDiagnosticContext(tt.line, start, start+len(tt.token)))
		})
	}
}

func TestIsDiagnosticContext_OutOfRange(t *testing.T) {
	assert.False(t, IsDiagnosticContext("ok", -1, 2))
	assert.False(t, IsDiagnosticContext("ok", 0, 5))
	assert.False(t, IsDiagnosticContext("ok", 1, 1))
}

func TestHasPanicEvidence(t *testing.T) {
	lines := []string{
		"running 1 test",
		"thread 'tests::boom' (4242) panicked at src/lib.rs:3:5:",
	}

	assert.True(t, hasPanicEvidence(lines, "tests::boom"))
	assert.False(t, hasPanicEvidence(lines, "tests::other"))
	assert.False(t, hasPanicEvidence(lines, ""))
}
