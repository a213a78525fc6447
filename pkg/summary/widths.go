package summary

import "strconv"

// PercentPerDigit is how many percentage points of segment width one decimal
// digit of an overlaid count label needs to stay legible.
const PercentPerDigit = 8.0

// Segment is one of the two rendered portions of a module bar.
type Segment struct {
	Kind    string // "pass" or "fail", used only for styling
	Count   int
	Percent float64 // raw share of samples
	Width   float64 // final width after legibility correction, 0..100
}

// AllocateWidths converts the summary's raw percentages into final segment
// widths. A segment whose label would not fit is widened to digits*8 points,
// the other segment absorbing the difference so the pair always sums to 100.
// The pass branch is checked first and at most one correction fires; a percent
// of exactly 0 is never corrected, so zero-width segments stay empty.
func AllocateWidths(s Summary) (pass, fail Segment) {
	pass = Segment{Kind: "pass", Count: s.PassCount, Percent: s.PassPercent, Width: s.PassPercent}
	fail = Segment{Kind: "fail", Count: s.FailCount, Percent: s.FailPercent, Width: s.FailPercent}

	passMin := float64(digits(s.PassCount)) * PercentPerDigit
	failMin := float64(digits(s.FailCount)) * PercentPerDigit

	switch {
	case s.PassPercent != 0 && s.PassPercent < passMin:
		pass.Width = clampWidth(passMin)
		fail.Width = 100 - pass.Width
	case s.FailPercent != 0 && s.FailPercent < failMin:
		fail.Width = clampWidth(failMin)
		pass.Width = 100 - fail.Width
	}
	return pass, fail
}

// digits returns the number of decimal digits in n's base-10 rendering.
func digits(n int) int {
	if n < 0 {
		n = -n
	}
	return len(strconv.Itoa(n))
}

// clampWidth keeps a corrected width inside the bar. Counts wide enough to
// push digits*8 past 100 would otherwise drive the sibling segment negative.
func clampWidth(w float64) float64 {
	if w > 100 {
		return 100
	}
	return w
}
