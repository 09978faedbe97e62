// Package report assembles the analysis report, the single artifact an analysis
// run produces, and renders it for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/newhook/swecheck/internal/logparser"
	"github.com/newhook/swecheck/internal/manifest"
	"github.com/newhook/swecheck/internal/rules"
	"github.com/newhook/swecheck/internal/universe"
)

// Inputs records the paths an analysis read.
type Inputs struct {
	Base     string   `json:"base,omitempty"`
	Before   string   `json:"before,omitempty"`
	After    string   `json:"after,omitempty"`
	Agent    string   `json:"agent,omitempty"`
	Manifest string   `json:"manifest,omitempty"`
	Report   string   `json:"report,omitempty"`
	Diffs    []string `json:"diffs,omitempty"`
}

// Stage returns the log path recorded for stage.
func (in Inputs) Stage(s universe.Stage) string {
	switch s {
	case universe.StageBase:
		return in.Base
	case universe.StageBefore:
		return in.Before
	case universe.StageAfter:
		return in.After
	case universe.StageAgent:
		return in.Agent
	}
	return ""
}

// Counts holds the universe sizes.
type Counts struct {
	F2P      int `json:"f2p"`
	P2P      int `json:"p2p"`
	Universe int `json:"universe"`
}

// RuleChecks holds every check outcome under its report key.
type RuleChecks struct {
	C1 rules.Outcome            `json:"c1_failed_in_base_present_in_P2P"`
	C2 rules.Outcome            `json:"c2_failed_in_after_present_in_F2P_or_P2P"`
	C3 rules.Outcome            `json:"c3_F2P_success_in_before"`
	C4 rules.Outcome            `json:"c4_P2P_missing_in_base_and_not_passing_in_before"`
	C5 rules.DuplicateOutcome   `json:"c5_duplicates_in_same_log_for_F2P_or_P2P"`
	C6 rules.ConditionalOutcome `json:"c6_test_marked_failed_in_report_but_passing_in_agent"`
	C7 rules.ConditionalOutcome `json:"c7_f2p_tests_in_golden_source_diff"`
}

// RuleEntry is one check in display order.
type RuleEntry struct {
	Key       string
	Title     string
	Outcome   rules.Outcome
	Evaluated bool
}

// Entries lists the checks in order. Checks that did not run have Evaluated
// false.
func (rc RuleChecks) Entries() []RuleEntry {
	return []RuleEntry{
		{"c1_failed_in_base_present_in_P2P", "P2P failed in base", rc.C1, true},
		{"c2_failed_in_after_present_in_F2P_or_P2P", "failed in after", rc.C2, true},
		{"c3_F2P_success_in_before", "F2P passed in before", rc.C3, true},
		{"c4_P2P_missing_in_base_and_not_passing_in_before", "P2P missing in base", rc.C4, true},
		{"c5_duplicates_in_same_log_for_F2P_or_P2P", "duplicates in one log", rc.C5.Outcome, true},
		{"c6_test_marked_failed_in_report_but_passing_in_agent", "report vs agent mismatch", rc.C6.Outcome, rc.C6.Evaluated},
		{"c7_f2p_tests_in_golden_source_diff", "F2P in golden source diff", rc.C7.Outcome, rc.C7.Evaluated},
	}
}

// Problems returns the number of checks that found a problem.
func (rc RuleChecks) Problems() int {
	n := 0
	for _, e := range rc.Entries() {
		if e.Outcome.HasProblem {
			n++
		}
	}
	return n
}

// RejectionReason is the acceptance decision with its partitions.
type RejectionReason struct {
	Satisfied bool   `json:"satisfied"`
	Message   string `json:"message,omitempty"`

	P2PIgnored  []string `json:"p2p_ignored_because_passed_in_base_and_after"`
	P2PRejected []string `json:"p2p_rejected"`
	P2POK       []string `json:"p2p_considered_but_ok"`
	F2PIgnored  []string `json:"f2p_ignored_because_passed_in_after"`
	F2PRejected []string `json:"f2p_rejected_because_failed_in_after"`
	F2POK       []string `json:"f2p_considered_but_ok"`
}

// TestStatus is one test's status in every stage.
type TestStatus struct {
	Base   universe.Status `json:"base"`
	Before universe.Status `json:"before"`
	After  universe.Status `json:"after"`
	Agent  universe.Status `json:"agent,omitempty"`
	Report universe.Status `json:"report,omitempty"`
}

// StageCounts are the extraction counts of one stage log.
type StageCounts struct {
	Format  string                  `json:"format"`
	Passed  int                     `json:"passed"`
	Failed  int                     `json:"failed"`
	Ignored int                     `json:"ignored"`
	All     int                     `json:"all"`
	Summary logparser.SummaryCounts `json:"summary"`
}

// AnalysisReport is the outcome of one analysis run.
type AnalysisReport struct {
	RunID       string    `json:"run_id"`
	Instance    string    `json:"instance,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	Inputs Inputs `json:"inputs"`
	Counts Counts `json:"counts"`

	RuleChecks         RuleChecks      `json:"rule_checks"`
	RejectionReason    RejectionReason `json:"rejection_reason"`
	RejectionSatisfied bool            `json:"rejection_satisfied"`

	P2PAnalysis map[string]TestStatus `json:"p2p_analysis"`
	F2PAnalysis map[string]TestStatus `json:"f2p_analysis"`

	DebugLogCounts map[universe.Stage]StageCounts `json:"debug_log_counts"`

	// ReportError is set when report data was supplied but could not be read.
	ReportError string `json:"report_error,omitempty"`
	// DiffError is set when diff files were supplied but could not be read.
	DiffError string `json:"diff_error,omitempty"`
	// AgentError is set when an agent log was supplied but could not be read.
	AgentError string `json:"agent_error,omitempty"`
}

// Params is everything Build assembles a report from.
type Params struct {
	RunID    string
	Instance string
	Now      time.Time

	Inputs   Inputs
	Manifest *manifest.Manifest

	// Statuses and Logs are keyed by stage. Absent stages have no entry.
	Statuses map[universe.Stage]universe.Statuses
	Logs     map[universe.Stage]*logparser.ParsedLog
	// Summaries holds the cargo summary totals of each stage log.
	Summaries map[universe.Stage]logparser.SummaryCounts

	Report      universe.Statuses
	ReportError string
	DiffError   string
	AgentError  string

	Result rules.Result
}

// Build assembles the report. It does not modify its inputs.
func Build(p Params) *AnalysisReport {
	m := p.Manifest
	if m == nil {
		m = &manifest.Manifest{}
	}
	runID := p.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	res := p.Result
	acc := res.Acceptance
	r := &AnalysisReport{
		RunID:       runID,
		Instance:    p.Instance,
		GeneratedAt: now,
		Inputs:      p.Inputs,
		Counts: Counts{
			F2P:      len(m.FailToPass),
			P2P:      len(m.PassToPass),
			Universe: len(m.Universe()),
		},
		RuleChecks: RuleChecks{
			C1: res.FailedInBase,
			C2: res.FailedInAfter,
			C3: res.F2PPassedInBefore,
			C4: res.P2PMissingInBase,
			C5: res.Duplicates,
			C6: res.ReportAgentMismatch,
			C7: res.F2PInGoldenSourceDiff,
		},
		RejectionReason: RejectionReason{
			Satisfied:   acc.Rejected,
			Message:     acc.Reason,
			P2PIgnored:  acc.P2PIgnored,
			P2PRejected: acc.P2PRejected,
			P2POK:       acc.P2POK,
			F2PIgnored:  acc.F2PIgnored,
			F2PRejected: acc.F2PRejected,
			F2POK:       acc.F2POK,
		},
		RejectionSatisfied: acc.Rejected,
		P2PAnalysis:        matrix(m.PassToPass, p.Statuses, p.Report),
		F2PAnalysis:        matrix(m.FailToPass, p.Statuses, p.Report),
		DebugLogCounts:     make(map[universe.Stage]StageCounts),
		ReportError:        p.ReportError,
		DiffError:          p.DiffError,
		AgentError:         p.AgentError,
	}

	for stage, log := range p.Logs {
		if log == nil {
			continue
		}
		r.DebugLogCounts[stage] = StageCounts{
			Format:  log.Format.String(),
			Passed:  log.Passed.Len(),
			Failed:  log.Failed.Len(),
			Ignored: log.Ignored.Len(),
			All:     log.All.Len(),
			Summary: p.Summaries[stage],
		}
	}
	return r
}

func matrix(names []string, statuses map[universe.Stage]universe.Statuses, rep universe.Statuses) map[string]TestStatus {
	out := make(map[string]TestStatus, len(names))
	for _, name := range names {
		ts := TestStatus{
			Base:   statuses[universe.StageBase].Get(name),
			Before: statuses[universe.StageBefore].Get(name),
			After:  statuses[universe.StageAfter].Get(name),
		}
		if agent, ok := statuses[universe.StageAgent]; ok {
			ts.Agent = agent.Get(name)
		}
		if rep != nil {
			ts.Report = rep.Get(name)
		}
		out[name] = ts
	}
	return out
}

// Marshal encodes the report as indented JSON.
func (r *AnalysisReport) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// WriteFile writes the report to path as indented JSON.
func (r *AnalysisReport) WriteFile(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

// Unmarshal decodes a report previously produced by Marshal.
func Unmarshal(data []byte) (*AnalysisReport, error) {
	var r AnalysisReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}
