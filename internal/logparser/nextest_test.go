package logparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextestParser_Parse(t *testing.T) {
	input := `    Starting 4 tests across 1 binary
        PASS [   0.004s] my-crate tests::alpha
        FAIL [   0.010s] my-crate tests::beta
        SKIP [   0.000s] my-crate tests::gamma
     TIMEOUT [  60.001s] my-crate tests::hang
test legacy::delta ... ok
------------
     Summary [   0.020s] 4 tests run: 1 passed, 2 failed, 1 skipped
        FAIL [   0.010s] my-crate tests::beta`

	parsed := (&NextestParser{}).Parse(input)
	assertPartition(t, parsed)

	assert.Equal(t, FormatNextest, parsed.Format)
	assert.Equal(t, []string{"legacy::delta", "tests::alpha"}, parsed.Passed.Sorted())
	assert.Equal(t, []string{"tests::beta", "tests::hang"}, parsed.Failed.Sorted())
	assert.Equal(t, []string{"tests::gamma"}, parsed.Ignored.Sorted())
}

func TestNextestParser_RetryKeepsFailure(t *testing.T) {
	input := `  TRY 1 FAIL [   0.010s] my-crate tests::flaky
  TRY 2 PASS [   0.011s] my-crate tests::flaky`

	parsed := (&NextestParser{}).Parse(input)

	assert.True(t, parsed.Failed.Has("tests::flaky"))
	assert.False(t, parsed.Passed.Has("tests::flaky"))
}

func TestNormalizeNextestName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Crate prefix is dropped",
			input:    "my-crate tests::alpha",
			expected: "tests::alpha",
		},
		{
			name:     "Binary qualified id stays verbatim",
			input:    "my-crate::integration tests::alpha",
			expected: "my-crate::integration tests::alpha",
		},
		{
			name:     "Path repeating the crate stays verbatim",
			input:    "my_crate my_crate::tests::x",
			expected: "my_crate my_crate::tests::x",
		},
		{
			name:     "Hyphenated crate repeated as identifier stays verbatim",
			input:    "my-crate my_crate::tests::x",
			expected: "my-crate my_crate::tests::x",
		},
		{
			name:     "Bare test name",
			input:    "test_alone",
			expected: "test_alone",
		},
		{
			name:     "Top level test keeps the crate",
			input:    "my-crate test_top",
			expected: "my-crate test_top",
		},
		{
			name:     "Surrounding whitespace",
			input:    "  core tests::trimmed  ",
			expected: "tests::trimmed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeNextestName(tt.input))
		})
	}
}
