// Package patch loads the diff files of a task instance and answers whether a
// test is defined by the test diffs or touched by the golden source diff.
package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind is the role of a diff file.
type Kind string

const (
	// KindGolden is the reference solution diff.
	KindGolden Kind = "golden"
	// KindTest is a diff that only delivers tests.
	KindTest Kind = "test"
)

// File is one loaded diff.
type File struct {
	Path    string
	Kind    Kind
	Content string
}

// Set holds the loaded diffs partitioned by kind.
type Set struct {
	Golden []File
	Tests  []File
}

// IsDiffFile reports whether path looks like a diff or patch file.
func IsDiffFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".diff", ".patch":
		return true
	}
	return false
}

// Classify decides the role of a diff from its file name. Names mentioning
// "test" are test diffs, everything else is golden source.
func Classify(path string) Kind {
	if strings.Contains(strings.ToLower(filepath.Base(path)), "test") {
		return KindTest
	}
	return KindGolden
}

// Load reads and classifies the diff files.
func Load(paths []string) (*Set, error) {
	s := &Set{}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read diff %s: %w", path, err)
		}
		s.Add(File{Path: path, Kind: Classify(path), Content: string(data)})
	}
	return s, nil
}

// Add places f in the partition named by its kind.
func (s *Set) Add(f File) {
	if f.Kind == KindTest {
		s.Tests = append(s.Tests, f)
	} else {
		s.Golden = append(s.Golden, f)
	}
}

// Empty reports whether no diff was loaded.
func (s *Set) Empty() bool {
	return s == nil || len(s.Golden)+len(s.Tests) == 0
}

// Paths returns the paths of every loaded diff, golden first.
func (s *Set) Paths() []string {
	var paths []string
	for _, f := range s.Golden {
		paths = append(paths, f.Path)
	}
	for _, f := range s.Tests {
		paths = append(paths, f.Path)
	}
	return paths
}

// SearchKey returns the identifier used to look a test up in diffs: the last
// "::" separated segment of its name.
func SearchKey(testName string) string {
	if i := strings.LastIndex(testName, "::"); i >= 0 {
		return testName[i+2:]
	}
	return testName
}

// GoldenMention returns the first golden diff whose text contains key.
func (s *Set) GoldenMention(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	for _, f := range s.Golden {
		if strings.Contains(f.Content, key) {
			return f.Path, true
		}
	}
	return "", false
}

// TestDefines reports whether any test diff defines a function named key.
func (s *Set) TestDefines(key string) bool {
	for _, f := range s.Tests {
		if DefinesFunction(f.Content, key) {
			return true
		}
	}
	return false
}

// attributeLookahead is how many lines after a test attribute may hold the
// function signature.
const attributeLookahead = 3

// DefinesFunction reports whether content defines a function named key, either
// as a literal "fn key(" or as a function following a #[test] attribute within
// three lines.
func DefinesFunction(content, key string) bool {
	if key == "" {
		return false
	}
	if strings.Contains(content, "fn "+key+"(") {
		return true
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if !strings.Contains(diffBody(line), "#[test]") {
			continue
		}
		for j := i + 1; j < len(lines) && j <= i+attributeLookahead; j++ {
			if declaresFn(diffBody(lines[j]), key) {
				return true
			}
		}
	}
	return false
}

// diffBody strips the diff marker from a hunk line.
func diffBody(line string) string {
	if line != "" && strings.ContainsRune("+- ", rune(line[0])) {
		return line[1:]
	}
	return line
}

func declaresFn(line, key string) bool {
	rest := line
	for {
		i := strings.Index(rest, "fn "+key)
		if i < 0 {
			return false
		}
		after := rest[i+len("fn "+key):]
		if after == "" || !isIdentByte(after[0]) {
			return true
		}
		rest = after
	}
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
