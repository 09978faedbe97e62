package universe

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the chunk size in bytes used when splitting a log for an
// alternative analyzer.
const DefaultChunkSize = 50000

// Chunk splits text into pieces of at most size bytes. Each cut is placed after
// the last newline in the final quarter of the piece, else after the last newline
// anywhere in the piece, else at size backed off to the start of a rune, so no
// chunk splits a UTF-8 sequence. Concatenating the chunks yields text.
func Chunk(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			end = len(text)
		} else {
			searchStart := start + size*3/4
			if i := strings.LastIndexByte(text[searchStart:end], '\n'); i >= 0 {
				end = searchStart + i + 1
			} else if i := strings.LastIndexByte(text[start:end], '\n'); i >= 0 {
				end = start + i + 1
			} else {
				end = runeBoundary(text, start, end)
			}
		}
		chunks = append(chunks, text[start:end])
		start = end
	}
	return chunks
}

// runeBoundary moves a cut at end back to the nearest rune start after start. If
// the piece is shorter than one rune the cut moves forward past it instead.
func runeBoundary(text string, start, end int) int {
	cut := end
	for cut > start && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if cut > start {
		return cut
	}
	cut = end
	for cut < len(text) && !utf8.RuneStart(text[cut]) {
		cut++
	}
	return cut
}
