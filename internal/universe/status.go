// Package universe resolves the status of each manifest test in each stage log
// and merges verdicts produced by alternative analyzers.
package universe

import (
	"github.com/newhook/swecheck/internal/logparser"
)

// Status is the resolved state of one test in one log.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusIgnored Status = "ignored"
	// StatusMissing means the log holds no evidence of the test at all.
	StatusMissing Status = "missing"
)

// Statuses maps test names to their resolved status in one log.
type Statuses map[string]Status

// Get returns the status of name, or StatusMissing when it was never resolved.
func (s Statuses) Get(name string) Status {
	if st, ok := s[name]; ok {
		return st
	}
	return StatusMissing
}

// Resolve returns the status of name in the parsed log. Failure wins over a pass,
// and a pass wins over a skip. A nil log resolves to StatusMissing.
func Resolve(p *logparser.ParsedLog, name string) Status {
	if p == nil {
		return StatusMissing
	}
	switch {
	case p.Failed.Has(name):
		return StatusFailed
	case p.Passed.Has(name):
		return StatusPassed
	case p.Ignored.Has(name):
		return StatusIgnored
	default:
		return StatusMissing
	}
}

// ResolveAll resolves every name against the parsed log.
func ResolveAll(p *logparser.ParsedLog, names []string) Statuses {
	out := make(Statuses, len(names))
	for _, name := range names {
		out[name] = Resolve(p, name)
	}
	return out
}
