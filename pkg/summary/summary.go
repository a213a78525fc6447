// Package summary reduces a module's raw sample status map into pass/fail
// counts and computes the legibility-corrected widths of the two bar segments.
package summary

import "github.com/vanderheijden86/qcview/pkg/model"

// Summary holds the derived tallies for one module. It is immutable once
// computed; Aggregate is the only constructor.
type Summary struct {
	Total          int
	PassCount      int
	FailCount      int
	WarningPresent bool
	PassPercent    float64
	FailPercent    float64
}

// Aggregate tallies one module's status map. The reserved warning key is
// recorded separately and never counted. An explicit "pass" counts as a pass;
// every other sample entry counts as a fail. A map with no samples yields zero
// percentages rather than NaN; callers are expected not to render such modules.
func Aggregate(statuses model.SampleStatusMap) Summary {
	var s Summary
	for name, v := range statuses {
		if name == model.WarningKey {
			b, ok := v.(bool)
			s.WarningPresent = ok && b
			continue
		}
		s.Total++
		if str, ok := v.(string); ok && model.Status(str) == model.StatusPass {
			s.PassCount++
		} else {
			s.FailCount++
		}
	}

	if s.Total > 0 {
		s.PassPercent = float64(s.PassCount) / float64(s.Total) * 100
		s.FailPercent = float64(s.FailCount) / float64(s.Total) * 100
	}
	return s
}
