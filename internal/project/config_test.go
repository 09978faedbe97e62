package project

import (
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestGeneratedConfigIsValidTOML(t *testing.T) {
	cfg := &Config{
		Project: ProjectConfig{
			Name:      "deliverables",
			CreatedAt: time.Date(2026, 1, 26, 10, 30, 0, 0, time.UTC),
		},
	}
	content := cfg.GenerateDocumentedConfig()

	var parsed map[string]any
	_, err := toml.Decode(content, &parsed)
	require.NoError(t, err, "Generated config is not valid TOML:\n%s", content)

	project := parsed["project"].(map[string]any)
	require.Equal(t, "deliverables", project["name"])

	analysis := parsed["analysis"].(map[string]any)
	require.Equal(t, int64(50), analysis["max_examples"])
	require.Equal(t, int64(10), analysis["duplicate_min_distance"])
}

func TestGeneratedConfigRoundTrip(t *testing.T) {
	original := &Config{
		Project: ProjectConfig{
			Name:      `quoted "name"`,
			CreatedAt: time.Date(2026, 1, 26, 10, 30, 0, 0, time.UTC),
		},
		Analysis: AnalysisConfig{MaxExamples: intPtr(20), ParseWorkers: intPtr(2)},
		History:  HistoryConfig{Enabled: boolPtr(false)},
		Output:   OutputConfig{ReportName: "out.json"},
		Watch:    WatchConfig{DebounceMS: intPtr(50)},
	}

	var loaded Config
	_, err := toml.Decode(original.GenerateDocumentedConfig(), &loaded)
	require.NoError(t, err)

	require.Equal(t, original.Project.Name, loaded.Project.Name)
	require.True(t, loaded.Project.CreatedAt.Equal(original.Project.CreatedAt))
	require.Equal(t, 20, loaded.Analysis.GetMaxExamples())
	require.Equal(t, 2, loaded.Analysis.GetParseWorkers())
	require.Equal(t, 10, loaded.Analysis.GetDuplicateMinDistance())
	require.False(t, loaded.History.IsEnabled())
	require.Equal(t, "out.json", loaded.Output.GetReportName())
	require.Equal(t, 50*time.Millisecond, loaded.Watch.GetDebounce())
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config

	require.Equal(t, 50, cfg.Analysis.GetMaxExamples())
	require.Equal(t, 10, cfg.Analysis.GetDuplicateMinDistance())
	require.Equal(t, 4, cfg.Analysis.GetParseWorkers())
	require.Equal(t, 30*time.Minute, cfg.Analysis.GetCacheTTL())
	require.True(t, cfg.History.IsEnabled())
	require.Equal(t, "analysis_report.json", cfg.Output.GetReportName())
	require.Equal(t, 300*time.Millisecond, cfg.Watch.GetDebounce())
}

func TestConfigRejectsNonPositive(t *testing.T) {
	cfg := AnalysisConfig{MaxExamples: intPtr(0), ParseWorkers: intPtr(-1)}

	require.Equal(t, 50, cfg.GetMaxExamples())
	require.Equal(t, 4, cfg.GetParseWorkers())
}
