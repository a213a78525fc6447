package ui

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/qcview/pkg/model"
	"github.com/vanderheijden86/qcview/pkg/summary"
)

// RenderBar draws one module's two-segment bar into barWidth terminal cells.
// Segment cell counts follow the allocator's widths, so count labels stay
// legible; the label is centered inside its segment and dropped when the
// segment is too narrow anyway (sub-cell rounding on tiny terminals).
func RenderBar(theme Theme, mod *model.Module, barWidth int) string {
	if barWidth < 2 {
		barWidth = 2
	}

	agg := summary.Aggregate(mod.Statuses)
	if agg.Total == 0 {
		// Caller contract violation; render a zero-filled placeholder
		// instead of dividing by zero.
		return theme.MutedText.Render(strings.Repeat("░", barWidth))
	}

	pass, fail := summary.AllocateWidths(agg)

	passCells := int(pass.Width / 100 * float64(barWidth))
	if passCells < 0 {
		passCells = 0
	}
	if passCells > barWidth {
		passCells = barWidth
	}
	failCells := barWidth - passCells

	// A non-empty segment always gets at least one cell.
	if pass.Count > 0 && passCells == 0 && failCells > 1 {
		passCells, failCells = 1, failCells-1
	}
	if fail.Count > 0 && failCells == 0 && passCells > 1 {
		passCells, failCells = passCells-1, 1
	}

	return theme.PassSegment.Render(segmentCells(pass.Count, passCells)) +
		theme.FailSegment.Render(segmentCells(fail.Count, failCells))
}

// segmentCells renders one segment's cells with its count label centered.
func segmentCells(count, cells int) string {
	if cells <= 0 {
		return ""
	}
	label := fmt.Sprintf("%d", count)
	if count == 0 || len(label) > cells {
		return strings.Repeat(" ", cells)
	}
	left := (cells - len(label)) / 2
	right := cells - len(label) - left
	return strings.Repeat(" ", left) + label + strings.Repeat(" ", right)
}

// RenderWarningBanner returns the module's warning line, or "" when the
// warning flag is absent or false.
func RenderWarningBanner(theme Theme, mod *model.Module) string {
	if !mod.Statuses.Warning() {
		return ""
	}
	return theme.WarnBanner.Render("⚠ this module reported a warning")
}
