package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeChunks(t *testing.T) {
	tests := []struct {
		name   string
		chunks [][]ChunkResult
		want   map[string]string
	}{
		{
			name:   "failed then passed",
			chunks: [][]ChunkResult{{{"t", "failed"}}, {{"t", "passed"}}},
			want:   map[string]string{"t": "failed"},
		},
		{
			name:   "passed then failed",
			chunks: [][]ChunkResult{{{"t", "passed"}}, {{"t", "failed"}}},
			want:   map[string]string{"t": "failed"},
		},
		{
			name:   "non_existing then passed",
			chunks: [][]ChunkResult{{{"t", NonExisting}}, {{"t", "passed"}}},
			want:   map[string]string{"t": "passed"},
		},
		{
			name:   "passed then non_existing",
			chunks: [][]ChunkResult{{{"t", "passed"}}, {{"t", NonExisting}}},
			want:   map[string]string{"t": "passed"},
		},
		{
			name:   "identical repeats",
			chunks: [][]ChunkResult{{{"t", "passed"}}, {{"t", "passed"}}, {{"t", "passed"}}},
			want:   map[string]string{"t": "passed"},
		},
		{
			name:   "other conflict takes newer",
			chunks: [][]ChunkResult{{{"t", "ignored"}}, {{"t", "passed"}}},
			want:   map[string]string{"t": "passed"},
		},
		{
			name:   "passed then ignored takes newer",
			chunks: [][]ChunkResult{{{"t", "passed"}}, {{"t", "ignored"}}},
			want:   map[string]string{"t": "ignored"},
		},
		{
			name:   "independent tests",
			chunks: [][]ChunkResult{{{"a", "passed"}, {"b", NonExisting}}},
			want:   map[string]string{"a": "passed", "b": NonExisting},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeChunks(tt.chunks))
		})
	}
}

func TestMergedResults_Sorted(t *testing.T) {
	got := MergedResults(map[string]string{"b": "failed", "a": "passed"})
	assert.Equal(t, []ChunkResult{{"a", "passed"}, {"b", "failed"}}, got)
}

func TestFillFromAlternative(t *testing.T) {
	statuses := Statuses{
		"kept":    StatusFailed,
		"filled":  StatusMissing,
		"absent":  StatusMissing,
		"unknown": StatusMissing,
	}
	merged := map[string]string{
		"kept":   "passed",
		"filled": "passed",
		"absent": NonExisting,
	}

	got := FillFromAlternative(statuses, merged)

	assert.Equal(t, Statuses{
		"kept":    StatusFailed,
		"filled":  StatusPassed,
		"absent":  StatusMissing,
		"unknown": StatusMissing,
	}, got)
	assert.Equal(t, StatusMissing, statuses["filled"], "input must not change")
}
