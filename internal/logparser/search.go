package logparser

import "strings"

// searchContext is the number of lines kept before and after each match.
const searchContext = 5

// SearchResult is one log line mentioning a test.
type SearchResult struct {
	LineNumber    int      `json:"line_number"`
	LineContent   string   `json:"line_content"`
	ContextBefore []string `json:"context_before"`
	ContextAfter  []string `json:"context_after"`
}

// Search returns every line of the log that mentions the test, with surrounding
// context. Line numbers are 1-based.
func Search(logContent, testName string) []SearchResult {
	terms := SearchTerms(testName)
	lines := splitLines(logContent)

	var results []SearchResult
	for i, line := range lines {
		if !containsAny(line, terms) {
			continue
		}
		before := lines[max(0, i-searchContext):i]
		after := lines[i+1 : min(len(lines), i+1+searchContext)]
		results = append(results, SearchResult{
			LineNumber:    i + 1,
			LineContent:   line,
			ContextBefore: append([]string{}, before...),
			ContextAfter:  append([]string{}, after...),
		})
	}
	return results
}

// SearchTerms returns the strings that identify a test in a log: the full name,
// and for names like "src/lib.rs - parse (line 12)" also the part after the
// last " - ".
func SearchTerms(testName string) []string {
	terms := []string{testName}
	if idx := strings.LastIndex(testName, " - "); idx >= 0 {
		if last := testName[idx+3:]; last != "" && last != testName {
			terms = append(terms, last)
		}
	}
	return terms
}

func containsAny(line string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(line, term) {
			return true
		}
	}
	return false
}
