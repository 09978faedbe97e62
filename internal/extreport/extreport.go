// Package extreport decodes externally produced per-test report data into
// resolved statuses.
//
// Three shapes are recognized:
//
//	[{"test_name": "a", "status": "passed"}]
//	{"tests": {"a": {"status": "passed"}}}
//	{"<instance>": {"tests_status": {"FAIL_TO_PASS": {"success": ["a"], "failure": []}}}}
package extreport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/newhook/swecheck/internal/universe"
	schemafs "github.com/newhook/swecheck/schema"
)

// ErrUnrecognizedShape is returned when report data matches none of the known
// shapes.
var ErrUnrecognizedShape = errors.New("unrecognized report shape")

// Shape identifies the layout of report data.
type Shape string

const (
	ShapeFlat        Shape = "flat"
	ShapeTests       Shape = "tests"
	ShapeTestsStatus Shape = "tests_status"
)

// shapeSchemas lists the shapes in detection order.
var shapeSchemas = []struct {
	shape Shape
	file  string
}{
	{ShapeFlat, "report-flat.schema.json"},
	{ShapeTests, "report-tests.schema.json"},
	{ShapeTestsStatus, "report-tests-status.schema.json"},
}

var (
	compiled    map[Shape]*jsonschema.Schema
	compileOnce sync.Once
	compileErr  error
)

func compileSchemas() error {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		for _, s := range shapeSchemas {
			data, err := schemafs.FS.ReadFile(s.file)
			if err != nil {
				compileErr = fmt.Errorf("read %s: %w", s.file, err)
				return
			}
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
			if err != nil {
				compileErr = fmt.Errorf("unmarshal %s: %w", s.file, err)
				return
			}
			if err := compiler.AddResource(s.file, doc); err != nil {
				compileErr = fmt.Errorf("add %s resource: %w", s.file, err)
				return
			}
		}

		schemas := make(map[Shape]*jsonschema.Schema, len(shapeSchemas))
		for _, s := range shapeSchemas {
			sch, err := compiler.Compile(s.file)
			if err != nil {
				compileErr = fmt.Errorf("compile %s: %w", s.file, err)
				return
			}
			schemas[s.shape] = sch
		}
		compiled = schemas
	})
	return compileErr
}

// Data is decoded report data.
type Data struct {
	Shape    Shape
	Statuses universe.Statuses
}

// Names returns the reported test names in lexical order.
func (d *Data) Names() []string {
	names := make([]string, 0, len(d.Statuses))
	for name := range d.Statuses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads and decodes report data from path.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report data %s: %w", path, err)
	}
	d, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("report data %s: %w", path, err)
	}
	return d, nil
}

// DetectShape returns the first shape whose schema accepts the data.
func DetectShape(raw []byte) (Shape, error) {
	if err := compileSchemas(); err != nil {
		return "", err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	for _, s := range shapeSchemas {
		if compiled[s.shape].Validate(doc) == nil {
			return s.shape, nil
		}
	}
	return "", ErrUnrecognizedShape
}

// Decode detects the shape of raw and extracts a status per test. When a test is
// reported more than once a failure wins.
func Decode(raw []byte) (*Data, error) {
	shape, err := DetectShape(raw)
	if err != nil {
		return nil, err
	}

	d := &Data{Shape: shape, Statuses: make(universe.Statuses)}
	switch shape {
	case ShapeFlat:
		var entries []struct {
			TestName string `json:"test_name"`
			Status   string `json:"status"`
		}
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, err
		}
		for _, e := range entries {
			d.record(e.TestName, NormalizeStatus(e.Status))
		}

	case ShapeTests:
		var doc struct {
			Tests map[string]struct {
				Status string `json:"status"`
			} `json:"tests"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		for name, t := range doc.Tests {
			d.record(name, NormalizeStatus(t.Status))
		}

	case ShapeTestsStatus:
		var doc map[string]struct {
			TestsStatus map[string]struct {
				Success []string `json:"success"`
				Failure []string `json:"failure"`
			} `json:"tests_status"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		for _, instance := range doc {
			for _, category := range instance.TestsStatus {
				for _, name := range category.Success {
					d.record(name, universe.StatusPassed)
				}
				for _, name := range category.Failure {
					d.record(name, universe.StatusFailed)
				}
			}
		}
	}
	return d, nil
}

func (d *Data) record(name string, st universe.Status) {
	if name == "" || st == universe.StatusMissing {
		return
	}
	if d.Statuses[name] == universe.StatusFailed {
		return
	}
	if existing, ok := d.Statuses[name]; ok && existing == universe.StatusPassed && st == universe.StatusIgnored {
		return
	}
	d.Statuses[name] = st
}

// NormalizeStatus maps the status spellings found in report data to a resolved
// status. Unknown spellings map to StatusMissing.
func NormalizeStatus(s string) universe.Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "passed", "pass", "ok", "success":
		return universe.StatusPassed
	case "failed", "fail", "failure", "error":
		return universe.StatusFailed
	case "ignored", "skipped", "skip":
		return universe.StatusIgnored
	default:
		return universe.StatusMissing
	}
}
