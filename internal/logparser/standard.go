package logparser

import (
	"strings"
)

func init() {
	RegisterParser(&StandardParser{})
}

// Lookahead limits for results printed away from their "test NAME ..." line.
const (
	nearLookahead  = 200
	nearGrace      = 5
	farLookahead   = 10000
	farGrace       = 50
	splitLookback  = 10
	rescanBlock    = 100
	rescanGrace    = 5
	panicLookback  = 200
	panicLookahead = 3
)

// StandardParser parses multi-line cargo test output. It runs five passes; each
// pass only classifies tests that earlier passes left unresolved:
//
//  1. direct "test NAME ... STATUS" lines
//  2. deferred lookahead for results printed after interleaved output
//  3. repair of an "ok" split across two lines
//  4. broad rescan of the block following each unresolved test start
//  5. names listed under the "failures:" banner
type StandardParser struct {
	// Filter rejects status tokens that belong to diagnostic output.
	// Nil means IsDiagnosticContext.
	Filter ContextFilter
}

// Format returns FormatStandard.
func (p *StandardParser) Format() Format {
	return FormatStandard
}

// Parse extracts test verdicts from standard cargo test output.
func (p *StandardParser) Parse(logContent string) *ParsedLog {
	lines := splitLines(CleanLog(logContent))

	c := newClassification()
	c.absorb(p.directPass(lines))
	c.absorb(p.lookaheadPass(lines, c))
	c.absorb(splitTokenPass(lines, c))
	c.absorb(p.rescanPass(lines, c))
	c.absorb(failureBlockPass(lines))
	return c.freeze(FormatStandard)
}

func (p *StandardParser) filter() ContextFilter {
	if p.Filter != nil {
		return p.Filter
	}
	return IsDiagnosticContext
}

// directPass classifies lines of the exact shape "test NAME ... STATUS".
func (p *StandardParser) directPass(lines []string) *classification {
	pass := newClassification()
	for _, line := range lines {
		name, token, ok := matchDirect(line)
		if !ok {
			continue
		}
		if strings.Contains(name, " ... ") {
			// Several results ran together on one line.
			recordCompact(pass, line)
			continue
		}
		if o, ok := outcomeFromToken(token); ok {
			pass.record(name, o)
		}
	}
	return pass
}

// lookaheadPass resolves "test NAME ..." lines without a status by scanning
// forward, first in a near window and then in a far one.
func (p *StandardParser) lookaheadPass(lines []string, c *classification) *classification {
	pass := newClassification()
	for i, line := range lines {
		name, rest, ok := matchStart(line)
		if !ok || c.has(name) || pass.has(name) || strings.Contains(name, " ... ") {
			continue
		}
		if statusTokenPattern.MatchString(rest) {
			continue
		}

		o, found := p.lookahead(lines, i, name, nearLookahead, nearGrace)
		if !found {
			o, found = p.lookahead(lines, i, name, farLookahead, farGrace)
		}
		if found {
			pass.record(name, o)
		}
	}
	return pass
}

// lookahead scans up to window lines after lines[start] for the verdict of name.
// A later test start ends the scan once it is more than grace lines away.
func (p *StandardParser) lookahead(lines []string, start int, name string, window, grace int) (Outcome, bool) {
	end := min(len(lines), start+1+window)
	for j := start + 1; j < end; j++ {
		if isSectionEnd(lines[j]) {
			return "", false
		}
		if isBoundary(lines[j]) {
			if j-start > grace {
				return "", false
			}
			continue
		}
		if o, ok := p.statusOnLine(lines, start, j, name); ok {
			return o, true
		}
	}
	return "", false
}

// statusOnLine looks for a verdict on lines[j] in one of three shapes: a status
// word alone, a status word ending a line of logging noise, or a status word
// glued to the front of a logging line.
func (p *StandardParser) statusOnLine(lines []string, start, j int, name string) (Outcome, bool) {
	line := lines[j]

	if m := standaloneStatusPattern.FindStringSubmatch(line); m != nil {
		return outcomeFromToken(m[1])
	}

	if loggingNoisePattern.MatchString(line) {
		if m := trailingStatusPattern.FindStringSubmatchIndex(line); m != nil {
			if p.accept(lines, start, j, name, m[2], m[3]) {
				return outcomeFromToken(line[m[2]:m[3]])
			}
		}
	}

	if m := leadingStatusPattern.FindStringSubmatchIndex(line); m != nil {
		rest := line[m[4]:m[5]]
		if loggingNoisePattern.MatchString(rest) && p.accept(lines, start, j, name, m[2], m[3]) {
			return outcomeFromToken(line[m[2]:m[3]])
		}
	}
	return "", false
}

// accept applies the diagnostic filter to the token at lines[j][tokStart:tokEnd].
// A panic of the named test near the token overrides the filter.
func (p *StandardParser) accept(lines []string, start, j int, name string, tokStart, tokEnd int) bool {
	if !p.filter()(lines[j], tokStart, tokEnd) {
		return true
	}
	lo := max(start, j-panicLookback)
	hi := min(len(lines), j+panicLookahead)
	return hasPanicEvidence(lines[lo:hi], name)
}

// splitTokenPass handles an "ok" broken into a line ending in "o" and a line
// holding only "k".
func splitTokenPass(lines []string, c *classification) *classification {
	pass := newClassification()
	for j := 1; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) != "k" || !splitOPattern.MatchString(lines[j-1]) {
			continue
		}
		for k := j - 1; k >= 0 && k >= j-1-splitLookback; k-- {
			name, _, ok := matchStart(lines[k])
			if !ok {
				continue
			}
			if !c.has(name) {
				pass.record(name, OutcomePassed)
			}
			break
		}
	}
	return pass
}

// rescanPass searches the block after every still unresolved test start for the
// last status token that is not part of diagnostic output.
func (p *StandardParser) rescanPass(lines []string, c *classification) *classification {
	pass := newClassification()
	for i, line := range lines {
		name, rest, ok := matchStart(line)
		if !ok || c.has(name) || pass.has(name) || strings.Contains(name, " ... ") {
			continue
		}

		block := []string{rest}
		end := min(len(lines), i+1+rescanBlock)
		for j := i + 1; j < end; j++ {
			if isSectionEnd(lines[j]) {
				break
			}
			if isBoundary(lines[j]) {
				if j-i > rescanGrace {
					break
				}
				continue
			}
			block = append(block, lines[j])
		}

		if o, found := p.lastVerdict(block, name); found {
			pass.record(name, o)
		}
	}
	return pass
}

// lastVerdict returns the last acceptable status token in block.
func (p *StandardParser) lastVerdict(block []string, name string) (Outcome, bool) {
	filter := p.filter()
	panicked := hasPanicEvidence(block, name)
	for j := len(block) - 1; j >= 0; j-- {
		matches := statusTokenPattern.FindAllStringSubmatchIndex(block[j], -1)
		for k := len(matches) - 1; k >= 0; k-- {
			m := matches[k]
			if filter(block[j], m[2], m[3]) && !panicked {
				continue
			}
			if o, ok := outcomeFromToken(block[j][m[2]:m[3]]); ok {
				return o, true
			}
		}
	}
	return "", false
}

// failureBlockPass collects the indented names cargo lists under "failures:".
func failureBlockPass(lines []string) *classification {
	pass := newClassification()
	inBlock := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !inBlock {
			inBlock = trimmed == "failures:"
			continue
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "----") ||
			strings.HasPrefix(trimmed, "error:") || strings.HasPrefix(trimmed, "test result:") {
			inBlock = false
			continue
		}
		if strings.HasPrefix(line, "    ") && !strings.HasPrefix(line, "     ") {
			pass.record(normalizeName(trimmed), OutcomeFailed)
		}
	}
	return pass
}

// matchDirect matches a complete "test NAME ... STATUS" line.
func matchDirect(line string) (name, token string, ok bool) {
	m := directResultPattern.FindStringSubmatch(line)
	if m == nil {
		m = directTrailingPattern.FindStringSubmatch(line)
	}
	if m == nil {
		return "", "", false
	}
	return normalizeName(m[1]), m[2], true
}

// matchStart matches a "test NAME ..." line and returns what follows the dots.
func matchStart(line string) (name, rest string, ok bool) {
	m := testStartPattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	name = normalizeName(m[1])
	return name, m[2], name != ""
}

// isBoundary reports whether line starts another test.
func isBoundary(line string) bool {
	return testStartPattern.MatchString(line)
}

// isSectionEnd reports whether line closes the output of a test binary.
func isSectionEnd(line string) bool {
	return fileSummaryPattern.MatchString(line) || runningBannerPattern.MatchString(line)
}

// recordCompact records every compact result found on line.
func recordCompact(pass *classification, line string) {
	for _, m := range compactMatches(compactResultPattern, line, -1) {
		if o, ok := outcomeFromToken(line[m[4]:m[5]]); ok {
			pass.record(normalizeName(line[m[2]:m[3]]), o)
		}
	}
}

// normalizeName trims a raw test name and drops cargo's " - should panic" marker.
func normalizeName(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.TrimSuffix(name, " - should panic")
	return name
}
