// Package logparser extracts per-test verdicts from raw cargo-style test logs.
//
// Logs come in several incompatible dialects (multi-line "test NAME ... STATUS"
// output, ANSI-colored compressed output, cargo-nextest output and path based
// UI-test output). DetectFormat picks a strategy and the matching Parser turns the
// text into a ParsedLog.
package logparser

import (
	"sort"

	"github.com/newhook/swecheck/internal/logging"
)

// Outcome is the verdict a log reports for a single test.
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeIgnored Outcome = "ignored"
)

// Set is a set of test names.
type Set map[string]struct{}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of names in the set.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the names in lexical order.
func (s Set) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParsedLog is the extraction result for one log. Passed, Failed and Ignored are
// pairwise disjoint and All is their union. A ParsedLog is never modified after
// Parse returns it.
type ParsedLog struct {
	Format  Format
	Passed  Set
	Failed  Set
	Ignored Set
	All     Set
}

// Parser extracts test verdicts for one log format.
type Parser interface {
	// Format returns the log format this parser handles.
	Format() Format
	// Parse extracts test verdicts from the log content.
	Parse(logContent string) *ParsedLog
}

// parsers is the registry of available parsers, keyed by format.
var parsers = map[Format]Parser{}

// RegisterParser adds a parser to the registry, replacing any parser already
// registered for the same format.
func RegisterParser(p Parser) {
	parsers[p.Format()] = p
}

// ParserFor returns the parser registered for the format. Unknown formats fall
// back to the standard parser.
func ParserFor(f Format) Parser {
	if p, ok := parsers[f]; ok {
		return p
	}
	return parsers[FormatStandard]
}

// Parse detects the log format and extracts test verdicts with the matching parser.
func Parse(logContent string) *ParsedLog {
	format := DetectFormat(logContent)
	parsed := ParserFor(format).Parse(logContent)

	logging.Debug("parsed test log",
		"format", format.String(),
		"passed", parsed.Passed.Len(),
		"failed", parsed.Failed.Len(),
		"ignored", parsed.Ignored.Len(),
	)
	return parsed
}

// classification accumulates verdicts while a strategy runs. Strategies run as an
// ordered series of passes: each pass records into its own classification and is
// then absorbed into the running one, which only gains names it has not seen.
type classification struct {
	order    []string
	outcomes map[string]Outcome
}

func newClassification() *classification {
	return &classification{outcomes: make(map[string]Outcome)}
}

func (c *classification) has(name string) bool {
	_, ok := c.outcomes[name]
	return ok
}

// record sets the outcome for name within a single pass. Later evidence wins,
// except that a failure is never replaced.
func (c *classification) record(name string, o Outcome) {
	prev, ok := c.outcomes[name]
	if !ok {
		c.order = append(c.order, name)
	} else if prev == OutcomeFailed {
		return
	}
	c.outcomes[name] = o
}

// fill sets the outcome for name only if it is not classified yet.
func (c *classification) fill(name string, o Outcome) bool {
	if name == "" || c.has(name) {
		return false
	}
	c.order = append(c.order, name)
	c.outcomes[name] = o
	return true
}

// absorb fills every name of pass that is not classified yet.
func (c *classification) absorb(pass *classification) {
	for _, name := range pass.order {
		c.fill(name, pass.outcomes[name])
	}
}

func (c *classification) freeze(f Format) *ParsedLog {
	p := &ParsedLog{
		Format:  f,
		Passed:  Set{},
		Failed:  Set{},
		Ignored: Set{},
		All:     Set{},
	}
	for name, o := range c.outcomes {
		switch o {
		case OutcomePassed:
			p.Passed[name] = struct{}{}
		case OutcomeFailed:
			p.Failed[name] = struct{}{}
		case OutcomeIgnored:
			p.Ignored[name] = struct{}{}
		default:
			continue
		}
		p.All[name] = struct{}{}
	}
	return p
}

// outcomeFromToken maps a raw status token to an outcome.
func outcomeFromToken(token string) (Outcome, bool) {
	switch token {
	case "ok", "PASS", "PASSED", "passed":
		return OutcomePassed, true
	case "FAILED", "failed", "FAIL", "error", "ERROR":
		return OutcomeFailed, true
	case "ignored", "IGNORED", "SKIP", "skipped":
		return OutcomeIgnored, true
	}
	return "", false
}
