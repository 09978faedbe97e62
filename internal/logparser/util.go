package logparser

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

var (
	// timestampPattern matches GitHub Actions log timestamp prefixes.
	// Format: 2026-01-26T14:49:40.7760945Z
	timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d+Z\s*`)

	// ansiCSIPattern detects ANSI escape sequences, including ones whose ESC byte
	// was lost on the way: "[32mok[0m".
	ansiCSIPattern = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]|\[[0-9]+(?:;[0-9]+)*m`)
)

// StripTimestamps removes CI log timestamp prefixes from each line.
// Input:  "2026-01-26T14:49:40.7760945Z test foo ... ok"
// Output: "test foo ... ok"
func StripTimestamps(log string) string {
	lines := strings.Split(log, "\n")
	for i, line := range lines {
		lines[i] = timestampPattern.ReplaceAllString(line, "")
	}
	return strings.Join(lines, "\n")
}

// StripANSI removes ANSI escape sequences from the log, along with bare
// "[32m"-style color codes whose escape byte was dropped.
// Input:  "test foo ... \x1b[32mok\x1b[0m"
// Output: "test foo ... ok"
func StripANSI(log string) string {
	return ansiCSIPattern.ReplaceAllString(ansi.Strip(log), "")
}

// HasANSI reports whether the log contains ANSI escape sequences.
func HasANSI(log string) bool {
	return strings.Contains(log, "\x1b[") || ansiCSIPattern.MatchString(log)
}

// CleanLog applies all cleanup operations to a log.
func CleanLog(log string) string {
	log = strings.ReplaceAll(log, "\r\n", "\n")
	log = StripTimestamps(log)
	log = StripANSI(log)
	return log
}

// splitLines splits a log into lines, tolerating CRLF line endings.
func splitLines(log string) []string {
	log = strings.ReplaceAll(log, "\r\n", "\n")
	return strings.Split(log, "\n")
}
