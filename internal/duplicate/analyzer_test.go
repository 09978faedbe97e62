package duplicate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// numbered builds a log whose 1-based line n holds lines[n], padding gaps with
// filler lines.
func numbered(total int, lines map[int]string) string {
	out := make([]string, total)
	for i := range out {
		if l, ok := lines[i+1]; ok {
			out[i] = l
		} else {
			out[i] = fmt.Sprintf("filler %d", i+1)
		}
	}
	return strings.Join(out, "\n")
}

func TestAnalyze_CloseContradictoryRepeat(t *testing.T) {
	input := numbered(15, map[int]string{
		10: "test a ... ok",
		12: "test a ... FAILED",
	})

	groups := Analyze(input)

	require.Len(t, groups, 1)
	assert.Equal(t, "a", groups[0].Name)
	assert.Equal(t, UnknownFile, groups[0].File)
	assert.Equal(t, []int{10, 12}, groups[0].Lines())
	assert.Equal(t, ReasonCloseRepeat, groups[0].Reason)
}

func TestAnalyze_DistantContradictoryRepeat(t *testing.T) {
	input := numbered(40, map[int]string{
		1:  "test a ... ok",
		30: "test a ... error",
	})

	groups := Analyze(input)

	require.Len(t, groups, 1)
	assert.Equal(t, ReasonContradictory, groups[0].Reason)
}

func TestAnalyze_SameTestInDifferentBinariesIsBenign(t *testing.T) {
	input := numbered(30, map[int]string{
		1:  "     Running unittests src/lib.rs (target/debug/deps/foo-1a2b)",
		2:  "test a ... ok",
		3:  "test result: ok. 1 passed; 0 failed; 0 ignored",
		4:  "     Running tests/it.rs (target/debug/deps/it-3c4d)",
		5:  "test a ... ok",
		6:  "test result: ok. 1 passed; 0 failed; 0 ignored",
	})

	assert.Empty(t, Analyze(input))
}

func TestAnalyze_DistantRepeatWithDifferentContextIsBenign(t *testing.T) {
	input := numbered(40, map[int]string{
		5:  "test a ... ok",
		30: "test a ... ok",
	})

	assert.Empty(t, Analyze(input))
}

func TestAnalyze_IdenticalContext(t *testing.T) {
	block := map[int]string{
		1: "header", 2: "running 1 test", 3: "test x ... ok", 4: "", 5: "done",
		21: "header", 22: "running 1 test", 23: "test x ... ok", 24: "", 25: "done",
	}

	groups := Analyze(numbered(25, block))

	require.Len(t, groups, 1)
	assert.Equal(t, "x", groups[0].Name)
	assert.Equal(t, ReasonIdenticalContext, groups[0].Reason)
}

func TestAnalyze_NextestRepeat(t *testing.T) {
	input := `        PASS [   0.004s] my-crate tests::a
        PASS [   0.004s] my-crate tests::a`

	groups := Analyze(input)

	require.Len(t, groups, 1)
	assert.Equal(t, "tests::a", groups[0].Name)
}

func TestAnalyzer_MinDistance(t *testing.T) {
	input := numbered(20, map[int]string{
		1: "test a ... ok",
		6: "test a ... ok",
	})

	assert.Len(t, New().Analyze(input), 1)
	assert.Empty(t, (&Analyzer{MinDistance: 3}).Analyze(input))
}

func TestOccurrences_FileAttribution(t *testing.T) {
	input := `test early ... ok
     Running unittests src/lib.rs (target/debug/deps/foo-1a2b)
test lib_test ... ok
test result: ok. 1 passed; 0 failed; 0 ignored
test after_summary ... FAILED`

	occ := New().Occurrences(input)

	require.Len(t, occ, 3)
	assert.Equal(t, UnknownFile, occ[0].File)
	assert.Equal(t, "src/lib.rs", occ[1].File)
	assert.Equal(t, "unknown#1", occ[2].File)
	assert.Equal(t, "failed", occ[2].Status)
	assert.Equal(t, 5, occ[2].Line)
}

func TestGroupString(t *testing.T) {
	g := Group{
		File: "src/lib.rs",
		Name: "a",
		Occurrences: []Occurrence{
			{Line: 10, Status: "ok"},
			{Line: 12, Status: "failed"},
		},
		Reason: ReasonCloseRepeat,
	}

	assert.Equal(t, "a appears 2 times in src/lib.rs (lines 10, 12, statuses ok, failed): close_repeat", g.String())
}

func TestAnalyze_CompactLineRepeat(t *testing.T) {
	input := "\x1b[0mrunning 3 tests\ntest a ... ok test b ... ok test a ... \x1b[31mFAILED\x1b[0m\n"

	occ := New().Occurrences(input)
	require.Len(t, occ, 3)
	for _, o := range occ {
		assert.Equal(t, 2, o.Line)
	}

	groups := Analyze(input)
	require.Len(t, groups, 1)
	assert.Equal(t, "a", groups[0].Name)
	assert.Equal(t, []int{2, 2}, groups[0].Lines())
	assert.Equal(t, ReasonCloseRepeat, groups[0].Reason)
	assert.Contains(t, groups[0].String(), "statuses ok, failed")
}

func TestAnalyze_CompactLineWithoutRepeatIsBenign(t *testing.T) {
	groups := Analyze("test a ... ok test b ... FAILED latest a ... ok\n")
	assert.Empty(t, groups)
}
