// Package manifest loads the fail-to-pass and pass-to-pass test lists that define
// the test universe of one task instance.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidManifest is returned when manifest data does not describe test lists.
var ErrInvalidManifest = errors.New("invalid manifest")

// Kind is the partition a manifest test belongs to.
type Kind string

const (
	KindFailToPass Kind = "fail_to_pass"
	KindPassToPass Kind = "pass_to_pass"
)

// Manifest holds the ordered test identifiers of one instance.
type Manifest struct {
	// Instance is the instance id, taken from the data or the file name.
	Instance   string   `json:"instance_id,omitempty"`
	FailToPass []string `json:"fail_to_pass"`
	PassToPass []string `json:"pass_to_pass"`
}

// document is the on-disk form. Upper-case keys carry either an array or a
// JSON-encoded array string.
type document struct {
	Instance        string          `json:"instance_id"`
	FailToPass      []string        `json:"fail_to_pass"`
	PassToPass      []string        `json:"pass_to_pass"`
	FailToPassUpper json.RawMessage `json:"FAIL_TO_PASS"`
	PassToPassUpper json.RawMessage `json:"PASS_TO_PASS"`
}

// Load reads a manifest from path. Files ending in .yaml or .yml are decoded as
// YAML, everything else as JSON.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m *Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		m, err = ParseYAML(data)
	default:
		m, err = ParseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	if m.Instance == "" {
		m.Instance = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// ParseJSON decodes and validates JSON manifest data.
func ParseJSON(data []byte) (*Manifest, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	m := &Manifest{Instance: doc.Instance, FailToPass: doc.FailToPass, PassToPass: doc.PassToPass}
	if len(m.FailToPass) == 0 {
		names, err := decodeNames(doc.FailToPassUpper)
		if err != nil {
			return nil, fmt.Errorf("%w: FAIL_TO_PASS: %w", ErrInvalidManifest, err)
		}
		m.FailToPass = names
	}
	if len(m.PassToPass) == 0 {
		names, err := decodeNames(doc.PassToPassUpper)
		if err != nil {
			return nil, fmt.Errorf("%w: PASS_TO_PASS: %w", ErrInvalidManifest, err)
		}
		m.PassToPass = names
	}
	if m.FailToPass == nil {
		m.FailToPass = []string{}
	}
	if m.PassToPass == nil {
		m.PassToPass = []string{}
	}
	return m, nil
}

// ParseYAML decodes YAML manifest data by converting it to JSON and validating
// that.
func ParseYAML(data []byte) (*Manifest, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if v == nil {
		v = map[string]any{}
	}
	converted, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	return ParseJSON(converted)
}

func decodeNames(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		return names, nil
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, err
	}
	if strings.TrimSpace(encoded) == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(encoded), &names); err != nil {
		return nil, fmt.Errorf("decode encoded test list: %w", err)
	}
	return names, nil
}

// Universe returns the de-duplicated union of both lists, fail-to-pass first,
// in manifest order.
func (m *Manifest) Universe() []string {
	seen := make(map[string]bool, len(m.FailToPass)+len(m.PassToPass))
	var out []string
	for _, list := range [][]string{m.FailToPass, m.PassToPass} {
		for _, name := range list {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// Kind reports which list name belongs to. A name listed in both is reported as
// fail-to-pass.
func (m *Manifest) Kind(name string) (Kind, bool) {
	for _, n := range m.FailToPass {
		if n == name {
			return KindFailToPass, true
		}
	}
	for _, n := range m.PassToPass {
		if n == name {
			return KindPassToPass, true
		}
	}
	return "", false
}

// Empty reports whether the manifest lists no tests.
func (m *Manifest) Empty() bool {
	return len(m.FailToPass) == 0 && len(m.PassToPass) == 0
}
