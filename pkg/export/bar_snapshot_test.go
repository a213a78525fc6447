package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/qcview/pkg/model"
)

func snapshotReport() *model.Report {
	return &model.Report{
		Title: "Run 42",
		Modules: []model.Module{
			{Key: "per_base_quality", Statuses: model.SampleStatusMap{
				"s1": "pass", "s2": "pass", "s3": "fail",
			}},
			{Key: "adapter_content", Statuses: model.SampleStatusMap{
				"s1": "fail", "s2": "fail", "warning": true,
			}},
		},
	}
}

func TestSaveBarSnapshotSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.svg")
	err := SaveBarSnapshot(BarSnapshotOptions{Path: path, Report: snapshotReport()})
	if err != nil {
		t.Fatalf("SaveBarSnapshot: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	for _, want := range []string{
		"<svg", "Run 42",
		"Per base quality", "Adapter content",
		"modules: 2", "worst module: Adapter content (0% pass)",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
}

func TestSaveBarSnapshotPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.png")
	err := SaveBarSnapshot(BarSnapshotOptions{Path: path, Report: snapshotReport()})
	if err != nil {
		t.Fatalf("SaveBarSnapshot: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestSaveBarSnapshotInfersFormat(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "snapshot")
	err := SaveBarSnapshot(BarSnapshotOptions{Path: base, Report: snapshotReport()})
	if err != nil {
		t.Fatalf("SaveBarSnapshot: %v", err)
	}
	if _, err := os.Stat(base + ".svg"); err != nil {
		t.Errorf("extensionless path did not default to svg: %v", err)
	}
}

func TestSaveBarSnapshotRejectsBadInput(t *testing.T) {
	if err := SaveBarSnapshot(BarSnapshotOptions{Path: "x.svg"}); err == nil {
		t.Error("nil report accepted")
	}
	if err := SaveBarSnapshot(BarSnapshotOptions{Report: snapshotReport()}); err == nil {
		t.Error("empty path accepted")
	}
	err := SaveBarSnapshot(BarSnapshotOptions{
		Path: "x.gif", Format: "gif", Report: snapshotReport(),
	})
	if err == nil {
		t.Error("unsupported format accepted")
	}
}

func TestRenderSVGSegmentWidthsRespectLegibilityFloor(t *testing.T) {
	// 1 pass / 99 fail: raw pass share is 1%, below the 8pp floor for a
	// one-digit count, so the pass segment must be widened.
	statuses := model.SampleStatusMap{}
	statuses["s_pass"] = "pass"
	for i := 0; i < 99; i++ {
		statuses[fmt.Sprintf("s_fail_%02d", i)] = "fail"
	}
	report := &model.Report{Modules: []model.Module{{Key: "m", Statuses: statuses}}}

	layout := buildLayout(BarSnapshotOptions{Path: "x.svg", Report: report})
	if len(layout.Rows) != 1 {
		t.Fatalf("rows = %d", len(layout.Rows))
	}
	row := layout.Rows[0]
	if row.Pass.Width != 8 {
		t.Errorf("pass width = %v, want 8", row.Pass.Width)
	}
	if row.Pass.Width+row.Fail.Width != 100 {
		t.Errorf("widths sum to %v", row.Pass.Width+row.Fail.Width)
	}

	var buf bytes.Buffer
	if err := renderSVGToWriter(&buf, layout); err != nil {
		t.Fatalf("renderSVGToWriter: %v", err)
	}
	if !strings.Contains(buf.String(), "99") {
		t.Error("fail count label missing from SVG")
	}
}
