// Package duplicate finds test names reported more than once within one test
// binary's output and decides whether the repeat is a real conflict.
package duplicate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/newhook/swecheck/internal/logparser"
)

// UnknownFile is the file context before any file boundary is seen.
const UnknownFile = "unknown"

const (
	// DefaultMinDistance is the line distance below which a repeat is a duplicate.
	DefaultMinDistance = 10
	// DefaultContextLines is how many lines around an occurrence are compared.
	DefaultContextLines = 2
)

// Reason explains why a group is a true duplicate.
type Reason string

const (
	ReasonCloseRepeat      Reason = "close_repeat"
	ReasonContradictory    Reason = "contradictory_status"
	ReasonIdenticalContext Reason = "identical_context"
)

var (
	resultLinePattern  = regexp.MustCompile(`^\s*test (.+?) \.\.\. (ok|FAILED|failed|ignored|error)\b`)
	nextestLinePattern = regexp.MustCompile(`^\s*(?:TRY \d+ )?(PASS|FAIL|SKIP|IGNORED) \[\s*[\d.]+m?s\]\s+(?:\(\s*\d+/\d+\)\s+)?(.+?)\s*$`)
)

// Occurrence is one located mention of a test result.
type Occurrence struct {
	File    string
	Name    string
	Status  string // "ok", "failed" or "ignored"
	Line    int    // 1-based
	Context string // neighbouring lines, joined
}

// Group is a set of occurrences of one test within one file context that was
// judged a true duplicate.
type Group struct {
	File        string
	Name        string
	Occurrences []Occurrence
	Reason      Reason
}

// Lines returns the line numbers of the group's occurrences.
func (g Group) Lines() []int {
	lines := make([]int, len(g.Occurrences))
	for i, o := range g.Occurrences {
		lines[i] = o.Line
	}
	return lines
}

// String formats the group for reports.
func (g Group) String() string {
	lines := make([]string, len(g.Occurrences))
	statuses := make([]string, len(g.Occurrences))
	for i, o := range g.Occurrences {
		lines[i] = fmt.Sprint(o.Line)
		statuses[i] = o.Status
	}
	return fmt.Sprintf("%s appears %d times in %s (lines %s, statuses %s): %s",
		g.Name, len(g.Occurrences), g.File,
		strings.Join(lines, ", "), strings.Join(statuses, ", "), g.Reason)
}

// Analyzer detects true duplicates in raw log text.
type Analyzer struct {
	// MinDistance is the line distance below which two occurrences are a duplicate.
	MinDistance int
	// ContextLines is the number of lines before and after an occurrence that
	// make up its context.
	ContextLines int
}

// New returns an analyzer with the default thresholds.
func New() *Analyzer {
	return &Analyzer{MinDistance: DefaultMinDistance, ContextLines: DefaultContextLines}
}

// Analyze returns the true duplicate groups of the log with default thresholds.
func Analyze(logContent string) []Group {
	return New().Analyze(logContent)
}

// Analyze returns the true duplicate groups in the log, ordered by file and name.
func (a *Analyzer) Analyze(logContent string) []Group {
	occurrences := a.Occurrences(logContent)

	type key struct{ file, name string }
	grouped := make(map[key][]Occurrence)
	var order []key
	for _, o := range occurrences {
		k := key{o.File, o.Name}
		if _, ok := grouped[k]; !ok {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], o)
	}

	var groups []Group
	for _, k := range order {
		occ := grouped[k]
		if len(occ) < 2 {
			continue
		}
		if reason, dup := a.classify(occ); dup {
			groups = append(groups, Group{File: k.file, Name: k.name, Occurrences: occ, Reason: reason})
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].File != groups[j].File {
			return groups[i].File < groups[j].File
		}
		return groups[i].Name < groups[j].Name
	})
	return groups
}

// Occurrences locates every test result mention in the log and attributes it to
// the most recent file context.
func (a *Analyzer) Occurrences(logContent string) []Occurrence {
	lines := strings.Split(logparser.CleanLog(logContent), "\n")

	var occurrences []Occurrence
	file := UnknownFile
	section := 0
	for i, line := range lines {
		if name, ok := logparser.FileBoundary(line); ok {
			if name != "" {
				file = name
			} else {
				section++
				file = fmt.Sprintf("%s#%d", UnknownFile, section)
			}
			continue
		}

		found := matchOccurrences(line)
		if len(found) == 0 {
			continue
		}
		context := a.context(lines, i)
		for _, f := range found {
			occurrences = append(occurrences, Occurrence{
				File:    file,
				Name:    f.name,
				Status:  f.status,
				Line:    i + 1,
				Context: context,
			})
		}
	}
	return occurrences
}

// classify applies the three duplicate tests in order.
func (a *Analyzer) classify(occ []Occurrence) (Reason, bool) {
	minDistance := a.MinDistance
	if minDistance <= 0 {
		minDistance = DefaultMinDistance
	}

	lines := make([]int, len(occ))
	for i, o := range occ {
		lines[i] = o.Line
	}
	sort.Ints(lines)
	for i := 1; i < len(lines); i++ {
		if lines[i]-lines[i-1] < minDistance {
			return ReasonCloseRepeat, true
		}
	}

	var sawOK, sawFailed bool
	for _, o := range occ {
		switch o.Status {
		case "ok":
			sawOK = true
		case "failed":
			sawFailed = true
		}
	}
	if sawOK && sawFailed {
		return ReasonContradictory, true
	}

	first := occ[0].Context
	if strings.TrimSpace(first) == "" {
		return "", false
	}
	for _, o := range occ[1:] {
		if o.Context != first {
			return "", false
		}
	}
	return ReasonIdenticalContext, true
}

func (a *Analyzer) context(lines []string, i int) string {
	n := a.ContextLines
	if n <= 0 {
		n = DefaultContextLines
	}
	before := lines[max(0, i-n):i]
	after := lines[i+1 : min(len(lines), i+1+n)]
	return strings.Join(before, "\n") + "\n" + strings.Join(after, "\n")
}

type match struct {
	name   string
	status string
}

// matchOccurrences extracts every test name and normalized status on line.
// Compact output can carry several results on one physical line.
func matchOccurrences(line string) []match {
	if m := nextestLinePattern.FindStringSubmatch(line); m != nil {
		return []match{{logparser.NormalizeNextestName(m[2]), normalizeStatus(m[1])}}
	}

	var found []match
	rest := line
	if m := resultLinePattern.FindStringSubmatchIndex(line); m != nil {
		name := strings.TrimSuffix(strings.TrimSpace(line[m[2]:m[3]]), " - should panic")
		if name != "" {
			found = append(found, match{name, normalizeStatus(line[m[4]:m[5]])})
		}
		rest = line[m[1]:]
	}
	for _, r := range logparser.CompactResults(rest) {
		found = append(found, match{r.Name, normalizeStatus(r.Token)})
	}
	return found
}

func normalizeStatus(token string) string {
	switch token {
	case "ok", "PASS":
		return "ok"
	case "FAILED", "failed", "error", "FAIL":
		return "failed"
	default:
		return "ignored"
	}
}
