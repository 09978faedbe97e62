package rules

import (
	"fmt"

	"github.com/newhook/swecheck/internal/patch"
	"github.com/newhook/swecheck/internal/universe"
)

// failedInBase flags pass-to-pass tests that fail before any change.
func (e *evaluator) failedInBase() Outcome {
	o := newOutcome()
	for _, name := range e.in.Manifest.PassToPass {
		if e.in.Base.Get(name) == universe.StatusFailed {
			o.add(name, e.max)
		}
	}
	return o
}

// failedInAfter flags any universe test still failing after the golden patch.
func (e *evaluator) failedInAfter() Outcome {
	o := newOutcome()
	for _, name := range e.in.Manifest.Universe() {
		if e.in.After.Get(name) == universe.StatusFailed {
			o.add(name, e.max)
		}
	}
	return o
}

// f2pPassedInBefore flags fail-to-pass tests that already pass before the fix.
func (e *evaluator) f2pPassedInBefore() Outcome {
	o := newOutcome()
	for _, name := range e.in.Manifest.FailToPass {
		if e.in.Before.Get(name) == universe.StatusPassed {
			o.add(name, e.max)
		}
	}
	return o
}

// p2pMissingInBase flags pass-to-pass tests absent from base that do not pass
// in before either.
func (e *evaluator) p2pMissingInBase() Outcome {
	o := newOutcome()
	for _, name := range e.in.Manifest.PassToPass {
		base := e.in.Base.Get(name)
		if base != universe.StatusMissing {
			continue
		}
		before := e.in.Before.Get(name)
		if before != universe.StatusPassed {
			o.add(fmt.Sprintf("%s (base: %s, before: %s)", name, base, before), e.max)
		}
	}
	return o
}

// duplicates flags true duplicate groups of universe tests in any stage log.
func (e *evaluator) duplicates() DuplicateOutcome {
	d := DuplicateOutcome{Outcome: newOutcome(), PerStage: make(map[universe.Stage][]string)}

	inUniverse := make(map[string]bool)
	for _, name := range e.in.Manifest.Universe() {
		inUniverse[name] = true
	}

	for _, stage := range universe.Stages {
		groups, ok := e.in.Duplicates[stage]
		if !ok {
			continue
		}
		examples := []string{}
		for _, g := range groups {
			if !inUniverse[g.Name] {
				continue
			}
			if len(examples) < e.max {
				examples = append(examples, g.String())
			}
			d.add(fmt.Sprintf("%s: %s", stage, g.String()), e.max)
		}
		d.PerStage[stage] = examples
	}
	return d
}

// reportAgentMismatch flags tests whose external report verdict contradicts the
// agent log. It runs only when both are present.
func (e *evaluator) reportAgentMismatch() ConditionalOutcome {
	c := ConditionalOutcome{Outcome: newOutcome()}
	if e.in.Agent == nil || e.in.Report == nil {
		return c
	}
	c.Evaluated = true

	for _, name := range e.in.Manifest.Universe() {
		rep, agent := e.in.Report.Get(name), e.in.Agent.Get(name)
		if rep == universe.StatusFailed && agent == universe.StatusPassed ||
			rep == universe.StatusPassed && agent == universe.StatusFailed {
			c.add(fmt.Sprintf("%s (report: %s, agent: %s)", name, rep, agent), e.max)
		}
	}
	return c
}

// f2pInGoldenSourceDiff flags fail-to-pass tests mentioned by the golden diff
// but not defined by any test diff. It runs only when diffs are present.
func (e *evaluator) f2pInGoldenSourceDiff() ConditionalOutcome {
	c := ConditionalOutcome{Outcome: newOutcome()}
	if e.in.Diffs.Empty() {
		return c
	}
	c.Evaluated = true

	for _, name := range e.in.Manifest.FailToPass {
		key := patch.SearchKey(name)
		path, found := e.in.Diffs.GoldenMention(key)
		if !found || e.in.Diffs.TestDefines(key) {
			continue
		}
		c.add(fmt.Sprintf("%s: %q appears in golden source diff %s but no test diff defines it", name, key, path), e.max)
	}
	return c
}
