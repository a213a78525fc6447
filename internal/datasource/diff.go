package datasource

import (
	"fmt"
	"sort"

	"github.com/vanderheijden86/qcview/pkg/model"
)

// SourceDiff represents differences between two data sources. Pipelines that
// export both qc.db and qc_report.json should produce identical content; a
// non-empty diff usually means a partial or interrupted export.
type SourceDiff struct {
	// SourceA is the path of the first source
	SourceA string
	// SourceB is the path of the second source
	SourceB string
	// MissingInA contains module keys present in B but not in A
	MissingInA []string
	// MissingInB contains module keys present in A but not in B
	MissingInB []string
	// StatusMismatch contains samples with different status between sources
	StatusMismatch []StatusDifference
	// CountA is the number of modules in source A
	CountA int
	// CountB is the number of modules in source B
	CountB int
}

// StatusDifference represents a status mismatch for a single sample
type StatusDifference struct {
	Module  string `json:"module"`
	Sample  string `json:"sample"`
	StatusA string `json:"status_a"`
	StatusB string `json:"status_b"`
}

// HasInconsistencies returns true if there are any differences between sources
func (d SourceDiff) HasInconsistencies() bool {
	return len(d.MissingInA) > 0 || len(d.MissingInB) > 0 || len(d.StatusMismatch) > 0
}

// Summary returns a human-readable summary of the differences
func (d SourceDiff) Summary() string {
	if !d.HasInconsistencies() {
		return fmt.Sprintf("Sources match (%d modules each)", d.CountA)
	}

	summary := fmt.Sprintf("Inconsistencies found between %s and %s:\n", d.SourceA, d.SourceB)

	if d.CountA != d.CountB {
		summary += fmt.Sprintf("  - Module count mismatch: %d vs %d\n", d.CountA, d.CountB)
	}

	if len(d.MissingInA) > 0 {
		summary += fmt.Sprintf("  - %d modules in %s but not %s\n", len(d.MissingInA), d.SourceB, d.SourceA)
		if len(d.MissingInA) <= 5 {
			for _, key := range d.MissingInA {
				summary += fmt.Sprintf("    - %s\n", key)
			}
		}
	}

	if len(d.MissingInB) > 0 {
		summary += fmt.Sprintf("  - %d modules in %s but not %s\n", len(d.MissingInB), d.SourceA, d.SourceB)
		if len(d.MissingInB) <= 5 {
			for _, key := range d.MissingInB {
				summary += fmt.Sprintf("    - %s\n", key)
			}
		}
	}

	if len(d.StatusMismatch) > 0 {
		summary += fmt.Sprintf("  - %d samples with different status\n", len(d.StatusMismatch))
		if len(d.StatusMismatch) <= 5 {
			for _, m := range d.StatusMismatch {
				summary += fmt.Sprintf("    - %s/%s: %s vs %s\n", m.Module, m.Sample, m.StatusA, m.StatusB)
			}
		}
	}

	return summary
}

// DiffOptions configures the diff operation
type DiffOptions struct {
	// MaxDifferences limits the number of differences tracked (0 = unlimited)
	MaxDifferences int
}

// DefaultDiffOptions returns sensible default diff options
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{MaxDifferences: 100}
}

// DetectInconsistencies compares two reports and returns differences
func DetectInconsistencies(reportA, reportB *model.Report, sourceA, sourceB string, opts DiffOptions) SourceDiff {
	diff := SourceDiff{
		SourceA: sourceA,
		SourceB: sourceB,
	}

	mapA := make(map[string]model.SampleStatusMap)
	for _, mod := range reportA.Modules {
		mapA[mod.Key] = mod.Statuses
	}
	mapB := make(map[string]model.SampleStatusMap)
	for _, mod := range reportB.Modules {
		mapB[mod.Key] = mod.Statuses
	}

	diff.CountA = len(mapA)
	diff.CountB = len(mapB)

	for key := range mapA {
		if _, exists := mapB[key]; !exists {
			if opts.MaxDifferences == 0 || len(diff.MissingInB) < opts.MaxDifferences {
				diff.MissingInB = append(diff.MissingInB, key)
			}
		}
	}

	for key, statusesB := range mapB {
		statusesA, exists := mapA[key]
		if !exists {
			if opts.MaxDifferences == 0 || len(diff.MissingInA) < opts.MaxDifferences {
				diff.MissingInA = append(diff.MissingInA, key)
			}
			continue
		}

		for sample, valB := range statusesB {
			valA, ok := statusesA[sample]
			if !ok {
				valA = ""
			}
			if fmt.Sprint(valA) != fmt.Sprint(valB) {
				if opts.MaxDifferences == 0 || len(diff.StatusMismatch) < opts.MaxDifferences {
					diff.StatusMismatch = append(diff.StatusMismatch, StatusDifference{
						Module:  key,
						Sample:  sample,
						StatusA: fmt.Sprint(valA),
						StatusB: fmt.Sprint(valB),
					})
				}
			}
		}
	}

	sort.Strings(diff.MissingInA)
	sort.Strings(diff.MissingInB)
	sort.Slice(diff.StatusMismatch, func(i, j int) bool {
		a, b := diff.StatusMismatch[i], diff.StatusMismatch[j]
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		return a.Sample < b.Sample
	})

	return diff
}

// CompareSources loads and compares two data sources
func CompareSources(sourceA, sourceB DataSource, opts DiffOptions) (*SourceDiff, error) {
	reportA, err := LoadFromSource(sourceA)
	if err != nil {
		return nil, fmt.Errorf("failed to load source A (%s): %w", sourceA.Path, err)
	}

	reportB, err := LoadFromSource(sourceB)
	if err != nil {
		return nil, fmt.Errorf("failed to load source B (%s): %w", sourceB.Path, err)
	}

	diff := DetectInconsistencies(reportA, reportB, sourceA.Path, sourceB.Path, opts)
	return &diff, nil
}

// CheckAllSourcesConsistent compares all valid sources pairwise and reports
// any inconsistencies
func CheckAllSourcesConsistent(sources []DataSource, opts DiffOptions) ([]SourceDiff, error) {
	var diffs []SourceDiff

	for i := 0; i < len(sources); i++ {
		if !sources[i].Valid {
			continue
		}
		for j := i + 1; j < len(sources); j++ {
			if !sources[j].Valid {
				continue
			}

			diff, err := CompareSources(sources[i], sources[j], opts)
			if err != nil {
				continue
			}
			if diff.HasInconsistencies() {
				diffs = append(diffs, *diff)
			}
		}
	}

	return diffs, nil
}
