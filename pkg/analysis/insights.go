// Package analysis computes report-level statistics over module summaries.
// The results feed the TUI header line and snapshot exports.
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/qcview/pkg/model"
	"github.com/vanderheijden86/qcview/pkg/summary"
)

// ModuleScore pairs a module with its pass rate.
type ModuleScore struct {
	Key      string  `json:"key"`
	Title    string  `json:"title"`
	PassRate float64 `json:"pass_rate"`
	Failures int     `json:"failures"`
	Warning  bool    `json:"warning"`
}

// Insights holds aggregate statistics across all modules of a report.
type Insights struct {
	// ModuleCount is the number of modules analyzed
	ModuleCount int `json:"module_count"`
	// SampleCount is the number of distinct samples across modules
	SampleCount int `json:"sample_count"`
	// MeanPassRate is the mean per-module pass rate in [0, 1]
	MeanPassRate float64 `json:"mean_pass_rate"`
	// StdDevPassRate is the sample standard deviation of pass rates
	StdDevPassRate float64 `json:"stddev_pass_rate"`
	// MinPassRate is the lowest per-module pass rate
	MinPassRate float64 `json:"min_pass_rate"`
	// MaxPassRate is the highest per-module pass rate
	MaxPassRate float64 `json:"max_pass_rate"`
	// WarningCount is the number of modules carrying a warning flag
	WarningCount int `json:"warning_count"`
	// TotalFailures is the sum of failing samples across modules
	TotalFailures int `json:"total_failures"`
	// WorstModules lists modules ordered by ascending pass rate
	WorstModules []ModuleScore `json:"worst_modules,omitempty"`
}

// WorstModulesLimit caps the WorstModules list.
const WorstModulesLimit = 3

// Analyze computes Insights for a report. A nil or empty report yields the
// zero Insights.
func Analyze(report *model.Report) Insights {
	var ins Insights
	if report == nil || len(report.Modules) == 0 {
		return ins
	}

	ins.ModuleCount = len(report.Modules)
	ins.SampleCount = len(report.SampleNames())

	rates := make([]float64, 0, len(report.Modules))
	scores := make([]ModuleScore, 0, len(report.Modules))

	for _, mod := range report.Modules {
		agg := summary.Aggregate(mod.Statuses)
		if agg.Total == 0 {
			continue
		}
		rate := float64(agg.PassCount) / float64(agg.Total)
		rates = append(rates, rate)
		scores = append(scores, ModuleScore{
			Key:      mod.Key,
			Title:    mod.Title(),
			PassRate: rate,
			Failures: agg.FailCount,
			Warning:  agg.WarningPresent,
		})
		ins.TotalFailures += agg.FailCount
		if agg.WarningPresent {
			ins.WarningCount++
		}
	}
	if len(rates) == 0 {
		return ins
	}

	ins.MeanPassRate = stat.Mean(rates, nil)
	if len(rates) > 1 {
		ins.StdDevPassRate = stat.StdDev(rates, nil)
	}
	ins.MinPassRate = math.Inf(1)
	ins.MaxPassRate = math.Inf(-1)
	for _, r := range rates {
		ins.MinPassRate = math.Min(ins.MinPassRate, r)
		ins.MaxPassRate = math.Max(ins.MaxPassRate, r)
	}

	// Stable order: ascending pass rate, then key, so equal-rate modules don't
	// flicker between renders.
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].PassRate != scores[j].PassRate {
			return scores[i].PassRate < scores[j].PassRate
		}
		return scores[i].Key < scores[j].Key
	})
	if len(scores) > WorstModulesLimit {
		scores = scores[:WorstModulesLimit]
	}
	ins.WorstModules = scores

	return ins
}

// PassRateQuantiles returns the q-quantiles of per-module pass rates, useful
// for spotting skew in large reports. Returns nil when the report has fewer
// than two modules.
func PassRateQuantiles(report *model.Report, qs []float64) []float64 {
	if report == nil || len(report.Modules) < 2 {
		return nil
	}

	rates := make([]float64, 0, len(report.Modules))
	for _, mod := range report.Modules {
		agg := summary.Aggregate(mod.Statuses)
		if agg.Total == 0 {
			continue
		}
		rates = append(rates, float64(agg.PassCount)/float64(agg.Total))
	}
	if len(rates) < 2 {
		return nil
	}
	sort.Float64s(rates)

	out := make([]float64, len(qs))
	for i, q := range qs {
		out[i] = stat.Quantile(q, stat.Empirical, rates, nil)
	}
	return out
}
