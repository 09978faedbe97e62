package rules

import (
	"github.com/newhook/swecheck/internal/manifest"
	"github.com/newhook/swecheck/internal/universe"
)

// NoTestsReason is the rejection reason for a manifest with no tests.
const NoTestsReason = "no tests found in manifest"

// Acceptance partitions the manifest tests and decides whether the deliverable
// is rejected. Only pass-to-pass tests affect the decision.
type Acceptance struct {
	Rejected bool
	// Reason is set when the deliverable is rejected without looking at tests.
	Reason string

	P2PIgnored  []string // passed in base and after
	P2PRejected []string // missing in base and not passed in before
	P2POK       []string

	F2PIgnored  []string // passed in after
	F2PRejected []string // failed in after
	F2POK       []string
}

// Decide computes the acceptance decision from the base, before and after
// statuses.
func Decide(m *manifest.Manifest, base, before, after universe.Statuses) Acceptance {
	a := Acceptance{
		P2PIgnored:  []string{},
		P2PRejected: []string{},
		P2POK:       []string{},
		F2PIgnored:  []string{},
		F2PRejected: []string{},
		F2POK:       []string{},
	}
	if m == nil || m.Empty() {
		a.Rejected = true
		a.Reason = NoTestsReason
		return a
	}

	for _, name := range m.PassToPass {
		switch {
		case base.Get(name) == universe.StatusPassed && after.Get(name) == universe.StatusPassed:
			a.P2PIgnored = append(a.P2PIgnored, name)
		case base.Get(name) == universe.StatusMissing && before.Get(name) != universe.StatusPassed:
			a.P2PRejected = append(a.P2PRejected, name)
		default:
			a.P2POK = append(a.P2POK, name)
		}
	}

	for _, name := range m.FailToPass {
		switch after.Get(name) {
		case universe.StatusPassed:
			a.F2PIgnored = append(a.F2PIgnored, name)
		case universe.StatusFailed:
			a.F2PRejected = append(a.F2PRejected, name)
		default:
			a.F2POK = append(a.F2POK, name)
		}
	}

	a.Rejected = len(a.P2PRejected) > 0
	return a
}
