package logparser

import (
	"regexp"
	"strings"
)

func init() {
	RegisterParser(&SingleLineParser{})
}

// SingleLineParser parses ANSI-colored or compressed output where many results
// can share one physical line. Sub-passes run in order and never reclassify:
// compact results, compact results with trailing content, path based UI-test
// lines, and a lookahead windowed between successive compact test starts.
type SingleLineParser struct {
	// Filter rejects status tokens that belong to diagnostic output.
	// Nil means IsDiagnosticContext.
	Filter ContextFilter
}

// Format returns FormatSingleLineANSI.
func (p *SingleLineParser) Format() Format {
	return FormatSingleLineANSI
}

// Parse extracts test verdicts from single-line or ANSI-colored output.
func (p *SingleLineParser) Parse(logContent string) *ParsedLog {
	text := CleanLog(logContent)

	c := newClassification()
	c.absorb(compactPass(text, compactResultPattern))
	c.absorb(compactPass(text, compactTrailingPattern))
	c.absorb(uiTestPass(splitLines(text)))
	c.absorb(p.windowedPass(text, c))
	return c.freeze(FormatSingleLineANSI)
}

// compactPass records every match of pattern anywhere in text.
func compactPass(text string, pattern *regexp.Regexp) *classification {
	pass := newClassification()
	for _, m := range compactMatches(pattern, text, -1) {
		if o, ok := outcomeFromToken(text[m[4]:m[5]]); ok {
			pass.record(normalizeName(text[m[2]:m[3]]), o)
		}
	}
	return pass
}

// uiTestPass records path based UI-test results, one per logical line.
func uiTestPass(lines []string) *classification {
	pass := newClassification()
	for _, line := range lines {
		m := uiTestPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if o, ok := outcomeFromToken(m[2]); ok {
			pass.record(m[1], o)
		}
	}
	return pass
}

// windowedPass resolves compact test starts without a status by searching the
// text between one start and the next.
func (p *SingleLineParser) windowedPass(text string, c *classification) *classification {
	filter := p.Filter
	if filter == nil {
		filter = IsDiagnosticContext
	}

	pass := newClassification()
	starts := compactMatches(compactStartPattern, text, -1)
	for k, s := range starts {
		name := normalizeName(text[s[2]:s[3]])
		if c.has(name) || pass.has(name) {
			continue
		}

		end := len(text)
		if k+1 < len(starts) {
			end = starts[k+1][0]
		}
		window := text[s[1]:end]
		if idx := strings.Index(window, "test result:"); idx >= 0 {
			window = window[:idx]
		}

		lines := splitLines(window)
		if len(lines) > nearLookahead {
			lines = lines[:nearLookahead]
		}
		if o, ok := firstVerdict(lines, name, filter); ok {
			pass.record(name, o)
		}
	}
	return pass
}

// firstVerdict returns the first status token in lines that is not part of
// diagnostic output, or that a panic of the named test vouches for.
func firstVerdict(lines []string, name string, filter ContextFilter) (Outcome, bool) {
	panicked := hasPanicEvidence(lines, name)
	for _, line := range lines {
		if m := standaloneStatusPattern.FindStringSubmatch(line); m != nil {
			return outcomeFromToken(m[1])
		}
		for _, m := range statusTokenPattern.FindAllStringSubmatchIndex(line, -1) {
			if filter(line, m[2], m[3]) && !panicked {
				continue
			}
			if o, ok := outcomeFromToken(line[m[2]:m[3]]); ok {
				return o, true
			}
		}
	}
	return "", false
}
