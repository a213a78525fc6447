package loader_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/vanderheijden86/qcview/pkg/loader"
	"github.com/vanderheijden86/qcview/pkg/model"
)

const sampleJSON = `{
  "per_base_quality": {"SRR002": "fail", "SRR001": "pass", "warning": true},
  "adapter_content": {"SRR001": "pass", "SRR002": "pass"}
}`

func TestParseJSONPreservesModuleOrder(t *testing.T) {
	mods, err := loader.ParseJSON([]byte(sampleJSON), loader.ParseOptions{})
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}

	if len(mods) != 2 {
		t.Fatalf("len(mods) = %d, want 2", len(mods))
	}
	if mods[0].Key != "per_base_quality" || mods[1].Key != "adapter_content" {
		t.Errorf("module order = [%s %s], want file order", mods[0].Key, mods[1].Key)
	}
	if !mods[0].Statuses.Warning() {
		t.Error("per_base_quality warning flag lost")
	}
	if mods[0].Statuses.SampleCount() != 2 {
		t.Errorf("per_base_quality sample count = %d, want 2", mods[0].Statuses.SampleCount())
	}
}

func TestParseYAMLPreservesModuleOrder(t *testing.T) {
	data := []byte("zeta_check:\n  s1: pass\nalpha_check:\n  s1: fail\n  warning: true\n")

	mods, err := loader.ParseYAML(data, loader.ParseOptions{})
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if len(mods) != 2 {
		t.Fatalf("len(mods) = %d, want 2", len(mods))
	}
	if mods[0].Key != "zeta_check" || mods[1].Key != "alpha_check" {
		t.Errorf("module order = [%s %s], want document order", mods[0].Key, mods[1].Key)
	}
	if !mods[1].Statuses.Warning() {
		t.Error("alpha_check warning flag lost")
	}
}

func TestParseJSONBadValueTypesWarnAndSkip(t *testing.T) {
	data := []byte(`{"m": {"s1": "pass", "s2": 42, "warning": "yes"}}`)

	var warnings []string
	mods, err := loader.ParseJSON(data, loader.ParseOptions{
		WarningHandler: func(msg string) { warnings = append(warnings, msg) },
	})
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}

	if len(mods) != 1 {
		t.Fatalf("len(mods) = %d, want 1", len(mods))
	}
	if mods[0].Statuses.SampleCount() != 1 {
		t.Errorf("sample count = %d, want 1 (numeric status dropped)", mods[0].Statuses.SampleCount())
	}
	if mods[0].Statuses.Warning() {
		t.Error("string warning value must not set the flag")
	}
	if len(warnings) != 2 {
		t.Errorf("warnings = %v, want 2 entries", warnings)
	}
}

func TestParseJSONEmptyModuleSkipped(t *testing.T) {
	data := []byte(`{"empty": {"warning": true}, "ok": {"s1": "pass"}}`)

	var warnings []string
	mods, err := loader.ParseJSON(data, loader.ParseOptions{
		WarningHandler: func(msg string) { warnings = append(warnings, msg) },
	})
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if len(mods) != 1 || mods[0].Key != "ok" {
		t.Fatalf("mods = %v, want only the ok module", mods)
	}
	if len(warnings) == 0 {
		t.Error("expected a warning for the empty module")
	}
}

func TestParseJSONRejectsNonObjectRoot(t *testing.T) {
	if _, err := loader.ParseJSON([]byte(`["a"]`), loader.ParseOptions{}); err == nil {
		t.Error("array root accepted")
	}
}

func TestParseJSONStripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"m": {"s1": "pass"}}`)...)
	mods, err := loader.ParseJSON(data, loader.ParseOptions{})
	if err != nil {
		t.Fatalf("ParseJSON with BOM: %v", err)
	}
	if len(mods) != 1 {
		t.Errorf("len(mods) = %d, want 1", len(mods))
	}
}

func TestParseJSONUnknownStatusWarnsButKeeps(t *testing.T) {
	data := []byte(`{"m": {"s1": "warn"}}`)

	var warnings []string
	mods, err := loader.ParseJSON(data, loader.ParseOptions{
		WarningHandler: func(msg string) { warnings = append(warnings, msg) },
	})
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if mods[0].Statuses.SampleCount() != 1 {
		t.Error("unknown status value dropped, want kept (counts as fail)")
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "unknown status") {
		t.Errorf("warnings = %v", warnings)
	}

	fails := mods[0].Statuses.SamplesWithStatus(model.StatusFail)
	if !reflect.DeepEqual(fails, []string{"s1"}) {
		t.Errorf("fails = %v, want [s1]", fails)
	}
}

func TestLoadReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qc_report.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := loader.LoadReport(path)
	if err != nil {
		t.Fatalf("LoadReport: %v", err)
	}
	if r.Title != "Qc report" {
		t.Errorf("Title = %q", r.Title)
	}
	if r.Path != path {
		t.Errorf("Path = %q", r.Path)
	}
	if len(r.Modules) != 2 {
		t.Errorf("len(Modules) = %d, want 2", len(r.Modules))
	}
}

func TestFindReportPath(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "qc_report.yaml")
	if err := os.WriteFile(yamlPath, []byte("m:\n  s1: pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := loader.FindReportPath("", dir)
	if err != nil {
		t.Fatalf("FindReportPath: %v", err)
	}
	if got != yamlPath {
		t.Errorf("path = %q, want %q", got, yamlPath)
	}

	// Explicit path always wins.
	got, err = loader.FindReportPath("/tmp/other.json", dir)
	if err != nil || got != "/tmp/other.json" {
		t.Errorf("explicit path = %q err %v", got, err)
	}

	if _, err := loader.FindReportPath("", t.TempDir()); err == nil {
		t.Error("empty dir should yield an error")
	}
}

func TestFindReportPathEnvOverride(t *testing.T) {
	t.Setenv(loader.ReportEnvVar, "/custom/report.json")
	got, err := loader.FindReportPath("", t.TempDir())
	if err != nil {
		t.Fatalf("FindReportPath: %v", err)
	}
	if got != "/custom/report.json" {
		t.Errorf("path = %q, want env override", got)
	}
}
