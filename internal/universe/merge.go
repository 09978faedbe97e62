package universe

import (
	"sort"
)

// NonExisting is the status an alternative analyzer reports for a test it could
// not find in its chunk.
const NonExisting = "non_existing"

// ChunkResult is one verdict from an alternative analyzer for one log chunk.
type ChunkResult struct {
	TestName string `json:"test_name"`
	Status   string `json:"status"`
}

// MergeChunks folds the per-chunk verdicts of one log into a single status per
// test. A failure beats a pass, any concrete status beats NonExisting, and for
// any other disagreement the later chunk wins.
func MergeChunks(chunks [][]ChunkResult) map[string]string {
	merged := make(map[string]string)
	for _, chunk := range chunks {
		for _, r := range chunk {
			existing, ok := merged[r.TestName]
			if !ok {
				merged[r.TestName] = r.Status
				continue
			}
			merged[r.TestName] = mergeStatus(existing, r.Status)
		}
	}
	return merged
}

func mergeStatus(existing, incoming string) string {
	switch {
	case existing == string(StatusFailed) && incoming == string(StatusPassed),
		existing == string(StatusPassed) && incoming == string(StatusFailed):
		return string(StatusFailed)
	case existing == NonExisting:
		return incoming
	case incoming == NonExisting:
		return existing
	default:
		return incoming
	}
}

// MergedResults returns the merged map as a list sorted by test name.
func MergedResults(merged map[string]string) []ChunkResult {
	out := make([]ChunkResult, 0, len(merged))
	for name, status := range merged {
		out = append(out, ChunkResult{TestName: name, Status: status})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TestName < out[j].TestName })
	return out
}

// FillFromAlternative returns a copy of statuses where tests the extractor left
// missing take the alternative analyzer's concrete verdict. Verdicts the
// extractor produced are never replaced, and NonExisting leaves a test missing.
func FillFromAlternative(statuses Statuses, merged map[string]string) Statuses {
	out := make(Statuses, len(statuses))
	for name, st := range statuses {
		out[name] = st
		if st != StatusMissing {
			continue
		}
		switch alt := Status(merged[name]); alt {
		case StatusPassed, StatusFailed, StatusIgnored:
			out[name] = alt
		}
	}
	return out
}
