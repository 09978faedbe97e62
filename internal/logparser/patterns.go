package logparser

import "regexp"

// Patterns are compiled once at package init and shared read-only by every parser.
var (
	// Standard cargo result line: test tests::foo ... ok
	directResultPattern = regexp.MustCompile(`^\s*test (.+?) \.\.\. (ok|FAILED|ignored|error)\s*$`)

	// Same with trailing text after the status: test foo ... ignored, needs network
	directTrailingPattern = regexp.MustCompile(`^\s*test (.+?) \.\.\. (ok|FAILED|ignored|error)\b.*$`)

	// Start of a test whose result may be printed later: test foo ...
	testStartPattern = regexp.MustCompile(`^\s*test (.+?) \.\.\.(.*)$`)

	// Compact results, not anchored, so several may share one physical line.
	// Matches are used through compactMatches, which checks the word boundary
	// before "test".
	compactResultPattern = regexp.MustCompile(`test\s+(\S+)\s+\.\.\.\s+(ok|FAILED|ignored|error)(?:\s|$)`)

	// Compact results glued to whatever follows: test foo ... okrunning 3 tests
	compactTrailingPattern = regexp.MustCompile(`test\s+(\S+)\s+\.\.\.\s+(ok|FAILED|ignored|error)`)

	// Compact test start without a status.
	compactStartPattern = regexp.MustCompile(`test\s+(\S+)\s+\.\.\.`)

	// Path based UI-test result: [ui] tests/ui/foo.rs ... ok
	uiTestPattern = regexp.MustCompile(`(?:^|\s)(?:test\s+)?(?:\[[\w-]+\]\s+)?((?:[\w.-]+/)+[\w.-]+\.\w+)(?:\s+\([^)]*\))?\s+\.\.\.\s+(ok|FAILED|ignored|error)\b`)

	// A status word alone on its line.
	standaloneStatusPattern = regexp.MustCompile(`^\s*(ok|FAILED|failed|ignored|error)\s*$`)

	// A status word ending a line of other output.
	trailingStatusPattern = regexp.MustCompile(`\s(ok|FAILED|ignored|error)\s*$`)

	// A status word glued to the front of a logging line: ok[2024-01-01T00:00:00Z INFO ...
	leadingStatusPattern = regexp.MustCompile(`^(ok|FAILED|ignored|error)(?:\s+|\[|\()(.+)$`)

	// Any status token, used when scanning a block of text.
	statusTokenPattern = regexp.MustCompile(`\b(ok|FAILED|ignored|error)\b`)

	// Debug and trace noise interleaved with test output.
	loggingNoisePattern = regexp.MustCompile(`(?i)\b(?:trace|debug|info|warn|warning)\b|^\s*\[|^\s*\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}`)

	// Half of a split "ok": a line ending in a lone "o".
	splitOPattern = regexp.MustCompile(`(?:^|\s|\.\.\.)o\s*$`)

	// Nextest result lines: PASS [   0.004s] crate tests::foo
	nextestPassPattern   = regexp.MustCompile(`^\s*(?:TRY \d+ )?PASS \[\s*[\d.]+m?s\]\s+(?:\(\s*\d+/\d+\)\s+)?(.+?)\s*$`)
	nextestFailPattern   = regexp.MustCompile(`^\s*(?:TRY \d+ )?(?:FAIL|TIMEOUT|SIGSEGV|SIGABRT) \[\s*[\d.]+m?s\]\s+(?:\(\s*\d+/\d+\)\s+)?(.+?)\s*$`)
	nextestSkipPattern   = regexp.MustCompile(`^\s*(?:SKIP|IGNORED) \[\s*[\d.]+m?s\]\s+(?:\(\s*\d+/\d+\)\s+)?(.+?)\s*$`)
	nextestLineShape     = regexp.MustCompile(`(?m)^\s*(?:TRY \d+ )?(?:PASS|FAIL|SKIP|IGNORED) \[\s*[\d.]+m?s\]`)
	nextestRunIDPattern  = regexp.MustCompile(`(?i)nextest run id [0-9a-f-]+`)
	nextestStartingLines = regexp.MustCompile(`(?m)^\s*Starting \d+ tests? across \d+ binar`)

	// File boundaries used by the duplicate analyzer.
	runningBannerPattern  = regexp.MustCompile(`^\s*Running (?:unittests )?(\S*/\S*|\S+\.rs)(?:\s+\(([^)]+)\))?\s*$`)
	docTestsBannerPattern = regexp.MustCompile(`^\s*Doc-tests (\S+)\s*$`)
	fileSummaryPattern    = regexp.MustCompile(`^\s*test result: (?:ok|FAILED)\.`)

	// cargo summary: test result: ok. 47 passed; 0 failed; 3 ignored; ...
	cargoResultPattern = regexp.MustCompile(`test result: \w+\.\s*(\d+) passed;\s*(\d+) failed;\s*(\d+) ignored`)
)

// panicPattern builds the pattern matching a panic report for the named test.
func panicPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`thread '` + regexp.QuoteMeta(name) + `'(?: \(\d+\))? panicked at`)
}
