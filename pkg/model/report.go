// Package model defines the core data types for QC status reports: per-module
// sample status maps as produced by upstream QC pipelines, plus the loaded
// report wrapper the rest of qcview operates on.
package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Status is the per-sample check outcome within one module.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// WarningKey is the reserved key inside a module's status map. Its boolean
// value flags the module-level warning banner and is never counted as a sample.
const WarningKey = "warning"

// SampleStatusMap is one module's raw status mapping as decoded from the wire:
// sample name -> "pass"/"fail", plus the optional reserved "warning" -> bool.
// It is treated as read-only after load.
type SampleStatusMap map[string]any

// SamplesWithStatus returns the sample names whose status matches kind, in
// strictly ascending, case-sensitive lexicographic order. The reserved warning
// key is never included.
func (m SampleStatusMap) SamplesWithStatus(kind Status) []string {
	names := make([]string, 0, len(m))
	for name, v := range m {
		if name == WarningKey {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		// Anything that is not an explicit pass counts as a fail, mirroring
		// the tallying rule in pkg/summary.
		got := StatusFail
		if Status(s) == StatusPass {
			got = StatusPass
		}
		if got == kind {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Warning reports whether the module's warning flag is explicitly true.
// An absent key, a false value, or a non-bool value all mean no warning.
func (m SampleStatusMap) Warning() bool {
	v, ok := m[WarningKey]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// SampleCount returns the number of real sample entries (warning key excluded).
func (m SampleStatusMap) SampleCount() int {
	n := len(m)
	if _, ok := m[WarningKey]; ok {
		n--
	}
	return n
}

// Module is one QC check summarized by one bar in the report.
type Module struct {
	// Key is the module identifier from the report file (e.g. "per_base_quality").
	Key string
	// Statuses holds the raw per-sample outcomes, including the reserved
	// warning key if present.
	Statuses SampleStatusMap
}

// Title returns a display name derived from the module key.
func (m Module) Title() string {
	s := strings.ReplaceAll(m.Key, "_", " ")
	if s == "" {
		return m.Key
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Validate checks the module for caller contract violations.
func (m Module) Validate() error {
	if strings.TrimSpace(m.Key) == "" {
		return fmt.Errorf("module has empty key")
	}
	if m.Statuses.SampleCount() == 0 {
		return fmt.Errorf("module %q has no samples", m.Key)
	}
	return nil
}

// Report is a fully loaded QC status report. Modules keep the order of the
// source file so the rendered page matches the upstream report layout.
type Report struct {
	Title    string
	Modules  []Module
	Path     string
	LoadedAt time.Time
}

// FindModule returns the module with the given key, or nil.
func (r *Report) FindModule(key string) *Module {
	for i := range r.Modules {
		if r.Modules[i].Key == key {
			return &r.Modules[i]
		}
	}
	return nil
}

// SampleNames returns every distinct sample name across all modules, sorted.
func (r *Report) SampleNames() []string {
	seen := make(map[string]bool)
	for _, mod := range r.Modules {
		for name := range mod.Statuses {
			if name == WarningKey {
				continue
			}
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
