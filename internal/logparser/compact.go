package logparser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// statusTokens are the result words that may be glued directly to the next
// "test" keyword once colour codes are stripped: okFAILEDtest x ...
var statusTokens = []string{"ok", "FAILED", "ignored", "error"}

// CompactResult is one "test NAME ... STATUS" result found inside a line.
type CompactResult struct {
	Name  string
	Token string
}

// CompactResults returns every compact result in text, in order. Several may
// share one physical line.
func CompactResults(text string) []CompactResult {
	var results []CompactResult
	for _, m := range compactMatches(compactTrailingPattern, text, -1) {
		name := normalizeName(text[m[2]:m[3]])
		if name == "" {
			continue
		}
		results = append(results, CompactResult{Name: name, Token: text[m[4]:m[5]]})
	}
	return results
}

// compactMatches returns up to n (all when n < 0) submatch indexes of pattern
// whose "test" keyword starts a word or follows a glued status token, so that
// "latest foo ... ok" is not read as a result for foo.
func compactMatches(pattern *regexp.Regexp, text string, n int) [][]int {
	var out [][]int
	for _, m := range pattern.FindAllStringSubmatchIndex(text, -1) {
		if !atTestBoundary(text, m[0]) {
			continue
		}
		out = append(out, m)
		if n >= 0 && len(out) == n {
			break
		}
	}
	return out
}

func atTestBoundary(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
		return true
	}
	for _, tok := range statusTokens {
		if strings.HasSuffix(text[:i], tok) {
			return true
		}
	}
	return false
}
