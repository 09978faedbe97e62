package logparser

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SummaryCounts holds the totals cargo prints in its "test result:" lines.
type SummaryCounts struct {
	Passed  int  `json:"passed"`
	Failed  int  `json:"failed"`
	Ignored int  `json:"ignored"`
	Found   bool `json:"found"`
}

// Summary sums every cargo summary line in the log. There may be one per test
// binary:
//
//	test result: ok. 47 passed; 0 failed; 3 ignored; 0 measured; 0 filtered out; finished in 0.12s
//	test result: FAILED. 45 passed; 2 failed; 3 ignored; 0 measured; 0 filtered out; finished in 0.12s
func Summary(logContent string) SummaryCounts {
	var counts SummaryCounts
	for _, match := range cargoResultPattern.FindAllStringSubmatch(StripANSI(logContent), -1) {
		passed, _ := strconv.Atoi(match[1])
		failed, _ := strconv.Atoi(match[2])
		ignored, _ := strconv.Atoi(match[3])

		counts.Passed += passed
		counts.Failed += failed
		counts.Ignored += ignored
		counts.Found = true
	}
	return counts
}

// FileBoundary reports whether line opens or closes the output of one test
// binary, and names it. Closing lines are named "".
func FileBoundary(line string) (file string, ok bool) {
	if m := runningBannerPattern.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	if m := docTestsBannerPattern.FindStringSubmatch(line); m != nil {
		return "doc-tests " + m[1], true
	}
	if fileSummaryPattern.MatchString(line) {
		return "", true
	}
	return "", false
}

// Reconstruct renders the log as clean single-line "test NAME ... STATUS" output,
// sorted by name.
func (p *ParsedLog) Reconstruct() string {
	type entry struct {
		name  string
		token string
	}
	entries := make([]entry, 0, p.All.Len())
	for name := range p.Passed {
		entries = append(entries, entry{name, "ok"})
	}
	for name := range p.Failed {
		entries = append(entries, entry{name, "FAILED"})
	}
	for name := range p.Ignored {
		entries = append(entries, entry{name, "ignored"})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "test %s ... %s\n", e.name, e.token)
	}
	return b.String()
}
