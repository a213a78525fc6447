//go:build ignore

// generate_testdata.go writes synthetic QC reports for manual testing and
// benchmarking of the viewer.
//
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/small/qc_report.json   (5 modules x 10 samples)
//	testdata/medium/qc_report.json  (12 modules x 100 samples)
//	testdata/large/qc_report.json   (20 modules x 2000 samples)
package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

type datasetSpec struct {
	name    string
	modules int
	samples int
}

var datasets = []datasetSpec{
	{"small", 5, 10},
	{"medium", 12, 100},
	{"large", 20, 2000},
}

var moduleKeys = []string{
	"per_base_quality", "per_sequence_quality", "per_base_content",
	"gc_content", "n_content", "sequence_length", "duplication_levels",
	"overrepresented_sequences", "adapter_content", "kmer_content",
	"insert_size", "mapping_quality", "coverage_uniformity",
	"mark_duplicates", "base_recalibration", "variant_density",
	"contamination", "mean_coverage", "on_target_rate", "strand_balance",
}

func main() {
	for _, ds := range datasets {
		dir := filepath.Join("testdata", ds.name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", dir, err)
			os.Exit(1)
		}

		path := filepath.Join(dir, "qc_report.json")
		if err := os.WriteFile(path, []byte(generate(ds)), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s (%d modules x %d samples)\n", path, ds.modules, ds.samples)
	}
}

func generate(ds datasetSpec) string {
	// Deterministic per dataset so regenerated files diff cleanly.
	rng := rand.New(rand.NewSource(int64(ds.modules*1000 + ds.samples)))

	var b strings.Builder
	b.WriteString("{\n")
	for m := 0; m < ds.modules; m++ {
		key := moduleKeys[m%len(moduleKeys)]
		// Each module gets its own failure rate so the bars vary.
		failRate := rng.Float64() * 0.6

		fmt.Fprintf(&b, "  %q: {\n", key)
		for s := 0; s < ds.samples; s++ {
			status := "pass"
			if rng.Float64() < failRate {
				status = "fail"
			}
			fmt.Fprintf(&b, "    \"sample_%04d\": %q,\n", s, status)
		}
		if rng.Float64() < 0.25 {
			b.WriteString("    \"warning\": true\n")
		} else {
			b.WriteString("    \"warning\": false\n")
		}
		b.WriteString("  }")
		if m < ds.modules-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.String()
}
