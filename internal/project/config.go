package project

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed templates/config.tmpl
var configTemplateText string

// Config represents the project configuration stored in .swecheck/config.toml.
type Config struct {
	Project  ProjectConfig  `toml:"project"`
	Analysis AnalysisConfig `toml:"analysis"`
	History  HistoryConfig  `toml:"history"`
	Output   OutputConfig   `toml:"output"`
	Watch    WatchConfig    `toml:"watch"`
}

// ProjectConfig contains project metadata.
type ProjectConfig struct {
	Name      string    `toml:"name"`
	CreatedAt time.Time `toml:"created_at"`
}

// AnalysisConfig tunes the analysis.
type AnalysisConfig struct {
	// MaxExamples caps the examples recorded per check.
	// Defaults to 50 when not specified.
	MaxExamples *int `toml:"max_examples"`

	// DuplicateMinDistance is the line distance below which a repeated test
	// result is a duplicate. Defaults to 10 when not specified.
	DuplicateMinDistance *int `toml:"duplicate_min_distance"`

	// ParseWorkers bounds how many stage logs are parsed at once.
	// Defaults to 4 when not specified.
	ParseWorkers *int `toml:"parse_workers"`

	// CacheTTLMinutes is how long a parsed log stays cached.
	// Defaults to 30 minutes when not specified.
	CacheTTLMinutes *int `toml:"cache_ttl_minutes"`
}

// GetMaxExamples returns the example cap.
func (a *AnalysisConfig) GetMaxExamples() int {
	if a.MaxExamples != nil && *a.MaxExamples > 0 {
		return *a.MaxExamples
	}
	return 50
}

// GetDuplicateMinDistance returns the duplicate line distance threshold.
func (a *AnalysisConfig) GetDuplicateMinDistance() int {
	if a.DuplicateMinDistance != nil && *a.DuplicateMinDistance > 0 {
		return *a.DuplicateMinDistance
	}
	return 10
}

// GetParseWorkers returns the parse concurrency.
func (a *AnalysisConfig) GetParseWorkers() int {
	if a.ParseWorkers != nil && *a.ParseWorkers > 0 {
		return *a.ParseWorkers
	}
	return 4
}

// GetCacheTTL returns the parsed log cache lifetime.
func (a *AnalysisConfig) GetCacheTTL() time.Duration {
	if a.CacheTTLMinutes != nil && *a.CacheTTLMinutes > 0 {
		return time.Duration(*a.CacheTTLMinutes) * time.Minute
	}
	return 30 * time.Minute
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	// Enabled records every run. Defaults to true when not specified.
	Enabled *bool `toml:"enabled"`
}

// IsEnabled returns true if runs should be recorded.
func (h *HistoryConfig) IsEnabled() bool {
	if h.Enabled == nil {
		return true
	}
	return *h.Enabled
}

// OutputConfig controls where reports are written.
type OutputConfig struct {
	ReportName string `toml:"report_name"`
}

// GetReportName returns the report file name, "analysis_report.json" by default.
func (o *OutputConfig) GetReportName() string {
	if o.ReportName == "" {
		return "analysis_report.json"
	}
	return o.ReportName
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	DebounceMS *int `toml:"debounce_ms"`
}

// GetDebounce returns the debounce duration. Defaults to 300ms.
func (w *WatchConfig) GetDebounce() time.Duration {
	if w.DebounceMS != nil && *w.DebounceMS > 0 {
		return time.Duration(*w.DebounceMS) * time.Millisecond
	}
	return 300 * time.Millisecond
}

// LoadConfig reads and parses a config.toml file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// SaveDocumentedConfig writes a fully documented config to the specified path.
func (c *Config) SaveDocumentedConfig(path string) error {
	return os.WriteFile(path, []byte(c.GenerateDocumentedConfig()), 0644)
}

type configTemplateData struct {
	ProjectName          string
	CreatedAt            string
	MaxExamples          int
	DuplicateMinDistance int
	ParseWorkers         int
	CacheTTLMinutes      int
	HistoryEnabled       bool
	ReportName           string
	DebounceMS           int64
}

// tomlString formats a string for TOML output with proper escaping.
func tomlString(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}

var configTemplate = template.Must(template.New("config").Funcs(template.FuncMap{
	"tomlString": tomlString,
}).Parse(configTemplateText))

// GenerateDocumentedConfig renders the config with a comment on every option.
// Unset options are written with their defaults.
func (c *Config) GenerateDocumentedConfig() string {
	data := configTemplateData{
		ProjectName:          c.Project.Name,
		CreatedAt:            c.Project.CreatedAt.Format(time.RFC3339),
		MaxExamples:          c.Analysis.GetMaxExamples(),
		DuplicateMinDistance: c.Analysis.GetDuplicateMinDistance(),
		ParseWorkers:         c.Analysis.GetParseWorkers(),
		CacheTTLMinutes:      int(c.Analysis.GetCacheTTL() / time.Minute),
		HistoryEnabled:       c.History.IsEnabled(),
		ReportName:           c.Output.GetReportName(),
		DebounceMS:           c.Watch.GetDebounce().Milliseconds(),
	}

	var buf bytes.Buffer
	if err := configTemplate.Execute(&buf, data); err != nil {
		return fmt.Sprintf("[project]\nname = %s\ncreated_at = %s\n", tomlString(c.Project.Name), data.CreatedAt)
	}
	return buf.String()
}
