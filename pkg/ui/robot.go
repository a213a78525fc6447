package ui

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/qcview/pkg/analysis"
	"github.com/vanderheijden86/qcview/pkg/model"
	"github.com/vanderheijden86/qcview/pkg/summary"
)

// RenderRobotSummary renders a plain-text, ANSI-free report summary for
// non-TTY use (CI logs, agents, pipes).
func RenderRobotSummary(report *model.Report) string {
	var b strings.Builder

	title := report.Title
	if title == "" {
		title = "QC Report"
	}
	fmt.Fprintf(&b, "%s\n", title)

	ins := analysis.Analyze(report)
	fmt.Fprintf(&b, "modules=%d samples=%d mean_pass=%.1f%% warnings=%d failures=%d\n\n",
		ins.ModuleCount, ins.SampleCount, ins.MeanPassRate*100, ins.WarningCount, ins.TotalFailures)

	for _, mod := range report.Modules {
		agg := summary.Aggregate(mod.Statuses)
		if agg.Total == 0 {
			fmt.Fprintf(&b, "%-32s  (no samples)\n", mod.Key)
			continue
		}
		pass, fail := summary.AllocateWidths(agg)
		fmt.Fprintf(&b, "%-32s  pass=%d (%.1f%%) fail=%d (%.1f%%) widths=%.0f/%.0f",
			mod.Key, agg.PassCount, agg.PassPercent, agg.FailCount, agg.FailPercent,
			pass.Width, fail.Width)
		if agg.WarningPresent {
			b.WriteString("  WARNING")
		}
		b.WriteString("\n")

		if agg.FailCount > 0 {
			failed := mod.Statuses.SamplesWithStatus(model.StatusFail)
			fmt.Fprintf(&b, "%-32s  failing: %s\n", "", strings.Join(failed, ", "))
		}
	}

	if len(ins.WorstModules) > 0 {
		b.WriteString("\nworst modules:\n")
		for _, w := range ins.WorstModules {
			fmt.Fprintf(&b, "  %s (%.0f%% pass, %d failing)\n", w.Key, w.PassRate*100, w.Failures)
		}
	}

	return b.String()
}
