package logparser

import "strings"

// Format identifies the extraction strategy for a log.
type Format int

const (
	// FormatStandard is multi-line "test NAME ... STATUS" output.
	FormatStandard Format = iota
	// FormatSingleLineANSI is colored or compressed output where many results
	// may share one physical line.
	FormatSingleLineANSI
	// FormatNextest is cargo-nextest "PASS [time] NAME" output.
	FormatNextest
)

func (f Format) String() string {
	switch f {
	case FormatNextest:
		return "nextest"
	case FormatSingleLineANSI:
		return "single_line_ansi"
	default:
		return "standard"
	}
}

// nextestMarkers are strings only cargo-nextest prints.
var nextestMarkers = []string{
	"PASS [",
	"FAIL [",
	"cargo nextest run",
}

// DetectFormat selects the extraction strategy for raw log text.
//
// Nextest is checked first because nextest output may itself carry ANSI codes or
// interleaved traditional test lines.
func DetectFormat(logContent string) Format {
	if isNextest(logContent) {
		return FormatNextest
	}
	if isSingleLineANSI(logContent) {
		return FormatSingleLineANSI
	}
	return FormatStandard
}

func isNextest(logContent string) bool {
	for _, marker := range nextestMarkers {
		if strings.Contains(logContent, marker) {
			return true
		}
	}
	if nextestRunIDPattern.MatchString(logContent) || nextestStartingLines.MatchString(logContent) {
		return true
	}
	return len(nextestLineShape.FindAllStringIndex(logContent, 6)) > 5
}

func isSingleLineANSI(logContent string) bool {
	if HasANSI(logContent) {
		return true
	}

	lines := splitLines(strings.TrimRight(logContent, "\n"))
	if len(lines) <= 3 && len(compactMatches(compactResultPattern, logContent, 6)) > 5 {
		return true
	}

	uiLines := 0
	for _, line := range lines {
		if uiTestPattern.MatchString(line) {
			uiLines++
			if uiLines > 10 {
				return true
			}
		}
	}
	return false
}
