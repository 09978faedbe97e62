// Package rules evaluates the consistency checks and the acceptance decision
// over the per-stage statuses of a test universe.
//
// Evaluation is a pure function of its Input: it performs no I/O and keeps no
// state between calls.
package rules

import (
	"github.com/newhook/swecheck/internal/duplicate"
	"github.com/newhook/swecheck/internal/manifest"
	"github.com/newhook/swecheck/internal/patch"
	"github.com/newhook/swecheck/internal/universe"
)

// DefaultMaxExamples caps the examples recorded per rule.
const DefaultMaxExamples = 50

// Input is everything the rule engine looks at.
type Input struct {
	Manifest *manifest.Manifest

	// Statuses resolved over the manifest universe. Agent is nil when no agent
	// log was supplied.
	Base   universe.Statuses
	Before universe.Statuses
	After  universe.Statuses
	Agent  universe.Statuses

	// Report holds statuses from external report data, nil when absent.
	Report universe.Statuses

	// Duplicates holds the true duplicate groups found in each stage log.
	Duplicates map[universe.Stage][]duplicate.Group

	// Diffs is nil or empty when no diff files were supplied.
	Diffs *patch.Set

	// MaxExamples caps each example list. Zero means DefaultMaxExamples.
	MaxExamples int
}

// Outcome is the result of one check.
type Outcome struct {
	HasProblem bool     `json:"has_problem"`
	Examples   []string `json:"examples"`
}

// DuplicateOutcome is the duplicate check result with examples split by stage.
type DuplicateOutcome struct {
	Outcome
	PerStage map[universe.Stage][]string `json:"per_stage"`
}

// ConditionalOutcome is the result of a check that only runs when its optional
// inputs are present.
type ConditionalOutcome struct {
	Outcome
	Evaluated bool `json:"evaluated"`
}

// Result holds every check outcome and the acceptance decision.
type Result struct {
	FailedInBase          Outcome            // C1
	FailedInAfter         Outcome            // C2
	F2PPassedInBefore     Outcome            // C3
	P2PMissingInBase      Outcome            // C4
	Duplicates            DuplicateOutcome   // C5
	ReportAgentMismatch   ConditionalOutcome // C6
	F2PInGoldenSourceDiff ConditionalOutcome // C7
	Acceptance            Acceptance
}

// Evaluate runs every check and the acceptance decision.
func Evaluate(in Input) Result {
	e := &evaluator{in: in, max: in.MaxExamples}
	if e.max <= 0 {
		e.max = DefaultMaxExamples
	}
	if in.Manifest == nil {
		e.in.Manifest = &manifest.Manifest{}
	}

	return Result{
		FailedInBase:          e.failedInBase(),
		FailedInAfter:         e.failedInAfter(),
		F2PPassedInBefore:     e.f2pPassedInBefore(),
		P2PMissingInBase:      e.p2pMissingInBase(),
		Duplicates:            e.duplicates(),
		ReportAgentMismatch:   e.reportAgentMismatch(),
		F2PInGoldenSourceDiff: e.f2pInGoldenSourceDiff(),
		Acceptance:            Decide(e.in.Manifest, in.Base, in.Before, in.After),
	}
}

type evaluator struct {
	in  Input
	max int
}

func newOutcome() Outcome {
	return Outcome{Examples: []string{}}
}

// add records a problem, keeping at most max examples.
func (o *Outcome) add(example string, max int) {
	o.HasProblem = true
	if len(o.Examples) < max {
		o.Examples = append(o.Examples, example)
	}
}
