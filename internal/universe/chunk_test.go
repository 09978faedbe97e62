package universe

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want []string
	}{
		{
			name: "fits in one chunk",
			text: "short",
			size: 10,
			want: []string{"short"},
		},
		{
			name: "newline in last quarter",
			text: "aaaa\nbbbb\ncccc\n",
			size: 10,
			want: []string{"aaaa\nbbbb\n", "cccc\n"},
		},
		{
			name: "newline earlier in chunk",
			text: "aaaa\nbbbbbbbbbbbb",
			size: 10,
			want: []string{"aaaa\n", "bbbbbbbbbb", "bb"},
		},
		{
			name: "no newline",
			text: "abcdefghijkl",
			size: 5,
			want: []string{"abcde", "fghij", "kl"},
		},
		{
			name: "no newline keeps runes whole",
			text: "ééé",
			size: 3,
			want: []string{"é", "é", "é"},
		},
		{
			name: "size smaller than a rune",
			text: "éa",
			size: 1,
			want: []string{"é", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunk(tt.text, tt.size)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, strings.Join(got, ""))
			for _, c := range got {
				assert.True(t, utf8.ValidString(c), "chunk %q is not valid UTF-8", c)
			}
		})
	}
}
