package logparser

import "strings"

func init() {
	RegisterParser(&NextestParser{})
}

// NextestParser parses cargo-nextest output. Lines that are not nextest result
// lines fall back to the standard direct and compact patterns, so logs mixing
// both runners are absorbed.
type NextestParser struct{}

// Format returns FormatNextest.
func (p *NextestParser) Format() Format {
	return FormatNextest
}

// Parse extracts test verdicts from cargo-nextest output.
func (p *NextestParser) Parse(logContent string) *ParsedLog {
	lines := splitLines(CleanLog(logContent))

	pass := newClassification()
	for _, line := range lines {
		if m := nextestPassPattern.FindStringSubmatch(line); m != nil {
			pass.record(NormalizeNextestName(m[1]), OutcomePassed)
			continue
		}
		if m := nextestFailPattern.FindStringSubmatch(line); m != nil {
			pass.record(NormalizeNextestName(m[1]), OutcomeFailed)
			continue
		}
		if m := nextestSkipPattern.FindStringSubmatch(line); m != nil {
			pass.record(NormalizeNextestName(m[1]), OutcomeIgnored)
			continue
		}
		if name, token, ok := matchDirect(line); ok && !strings.Contains(name, " ... ") {
			if o, ok := outcomeFromToken(token); ok {
				pass.record(name, o)
			}
			continue
		}
		recordCompact(pass, line)
	}

	c := newClassification()
	c.absorb(pass)
	return c.freeze(FormatNextest)
}
