package analysis

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/newhook/swecheck/internal/patch"
	"github.com/newhook/swecheck/internal/report"
	"github.com/newhook/swecheck/internal/universe"
)

// Log file suffixes, matched case-insensitively.
var stageSuffixes = map[universe.Stage]string{
	universe.StageBase:   "_base.log",
	universe.StageBefore: "_before.log",
	universe.StageAfter:  "_after.log",
	universe.StageAgent:  "_post_agent_patch.log",
}

// reportNames are the file names external report data is found under.
var reportNames = []string{"report.json", "analysis.json", "results.json"}

// DefaultReportName is the file an analysis writes into the deliverable.
const DefaultReportName = "analysis_report.json"

// discoverDepth limits how deep a deliverable is searched.
const discoverDepth = 2

var fold = cases.Fold()

// InstanceName returns the instance a deliverable directory is named after: the
// first whitespace separated word of its base name.
func InstanceName(dir string) string {
	base := filepath.Base(filepath.Clean(dir))
	if fields := strings.Fields(base); len(fields) > 0 {
		return fields[0]
	}
	return base
}

// deliverableFile is one candidate file with its depth below the root.
type deliverableFile struct {
	path  string
	name  string // case-folded base name
	dir   string // case-folded parent directory relative to the root
	depth int
}

func listFiles(dir string) ([]deliverableFile, error) {
	root := filepath.Clean(dir)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open deliverable %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("deliverable %s is not a directory", dir)
	}

	var files []deliverableFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		depth := 0
		if rel != "." {
			depth = strings.Count(rel, string(filepath.Separator)) + 1
		}
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || depth >= discoverDepth) {
				return filepath.SkipDir
			}
			return nil
		}
		relDir := filepath.Dir(rel)
		if relDir == "." {
			relDir = ""
		}
		files = append(files, deliverableFile{
			path:  path,
			name:  fold.String(d.Name()),
			dir:   fold.String(filepath.ToSlash(relDir)),
			depth: depth,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan deliverable %s: %w", dir, err)
	}

	// Shallow files first, then logs/ and main/ ahead of other directories.
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].depth != files[j].depth {
			return files[i].depth < files[j].depth
		}
		pi, pj := dirPriority(files[i].dir), dirPriority(files[j].dir)
		if pi != pj {
			return pi < pj
		}
		return files[i].path < files[j].path
	})
	return files, nil
}

func dirPriority(dir string) int {
	switch dir {
	case "", "logs", "main":
		return 0
	}
	return 1
}

// Discover locates the inputs of a deliverable directory. Absent inputs are left
// empty; use ValidateLayout to list what is missing.
func Discover(dir string) (report.Inputs, error) {
	files, err := listFiles(dir)
	if err != nil {
		return report.Inputs{}, err
	}

	var in report.Inputs
	for _, stage := range universe.Stages {
		suffix := stageSuffixes[stage]
		for _, f := range files {
			if strings.HasSuffix(f.name, suffix) {
				setStage(&in, stage, f.path)
				break
			}
		}
	}

	in.Manifest = findManifest(files, InstanceName(dir))
	in.Report = findReport(files)

	for _, f := range files {
		if patch.IsDiffFile(f.name) {
			in.Diffs = append(in.Diffs, f.path)
		}
	}
	return in, nil
}

func setStage(in *report.Inputs, stage universe.Stage, path string) {
	switch stage {
	case universe.StageBase:
		in.Base = path
	case universe.StageBefore:
		in.Before = path
	case universe.StageAfter:
		in.After = path
	case universe.StageAgent:
		in.Agent = path
	}
}

func isReservedJSON(name string) bool {
	if name == DefaultReportName {
		return true
	}
	for _, r := range reportNames {
		if name == r {
			return true
		}
	}
	return false
}

// findManifest prefers <instance>.json and falls back to the only other JSON or
// YAML file in the root or main/.
func findManifest(files []deliverableFile, instance string) string {
	want := fold.String(instance + ".json")
	var candidates []string
	for _, f := range files {
		if f.dir != "" && f.dir != "main" {
			continue
		}
		if f.name == want {
			return f.path
		}
		switch filepath.Ext(f.name) {
		case ".json", ".yaml", ".yml":
			if !isReservedJSON(f.name) {
				candidates = append(candidates, f.path)
			}
		}
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	return ""
}

func findReport(files []deliverableFile) string {
	for _, name := range reportNames {
		for _, f := range files {
			if f.name == name {
				return f.path
			}
		}
	}
	return ""
}

// ValidateLayout lists what a deliverable directory is missing. An empty result
// means the layout is complete.
func ValidateLayout(dir string) []string {
	files, err := listFiles(dir)
	if err != nil {
		return []string{err.Error()}
	}

	var problems []string
	instance := InstanceName(dir)
	want := fold.String(instance + ".json")
	found := false
	for _, f := range files {
		if f.name == want && (f.dir == "" || f.dir == "main") {
			found = true
			break
		}
	}
	if !found {
		problems = append(problems, fmt.Sprintf("missing required file: %s.json", instance))
	}

	in, err := Discover(dir)
	if err != nil {
		return append(problems, err.Error())
	}
	for _, stage := range universe.Stages {
		if in.Stage(stage) == "" {
			problems = append(problems, fmt.Sprintf("missing required log file ending with: %s", stageSuffixes[stage]))
		}
	}
	return problems
}
