package logparser

import (
	"strings"
)

// ContextFilter reports whether the status token at line[start:end] is part of a
// diagnostic message rather than a test verdict.
type ContextFilter func(line string, start, end int) bool

// diagnosticMarkers appear near status words that belong to panic messages and
// error payloads: "called `Result::unwrap()` on an `Err` value: Custom { kind: Other, error: \"failed\" }".
var diagnosticMarkers = []string{
	"error:",
	"panic",
	"custom",
	"called `result::unwrap()`",
	"thread",
	"kind:",
}

// diagnosticWindow is how many bytes around a token are searched for markers.
const diagnosticWindow = 50

// IsDiagnosticContext is the default ContextFilter.
func IsDiagnosticContext(line string, start, end int) bool {
	if start < 0 || end > len(line) || start >= end {
		return false
	}

	lo := max(0, start-diagnosticWindow)
	hi := min(len(line), end+diagnosticWindow)
	window := strings.ToLower(line[lo:hi])
	for _, marker := range diagnosticMarkers {
		if strings.Contains(window, marker) {
			return true
		}
	}

	// The token is quoted, assigned or called: "failed", error = .., Err(error)
	if start > 0 && strings.ContainsRune("\"'`(=:<{", rune(line[start-1])) {
		return true
	}
	rest := line[end:]
	if rest != "" && strings.ContainsRune("\"'`)=:>}_-", rune(rest[0])) {
		return true
	}

	// Prose: "failed to connect", "error while reading"
	restLower := strings.ToLower(strings.TrimLeft(rest, " "))
	for _, word := range []string{"to ", "while ", "when ", "in ", "with ", "for "} {
		if len(rest) > 0 && rest[0] == ' ' && strings.HasPrefix(restLower, word) {
			return true
		}
	}
	return false
}

// hasPanicEvidence reports whether any of lines records a panic of the named test.
func hasPanicEvidence(lines []string, name string) bool {
	if name == "" {
		return false
	}
	pattern := panicPattern(name)
	for _, line := range lines {
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}
