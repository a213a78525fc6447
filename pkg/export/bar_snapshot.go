// Package export renders static snapshots of the QC status overview,
// suitable for attaching to pipeline run summaries.
package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/qcview/pkg/analysis"
	"github.com/vanderheijden86/qcview/pkg/model"
	"github.com/vanderheijden86/qcview/pkg/summary"
)

// BarSnapshotOptions controls snapshot export behaviour.
type BarSnapshotOptions struct {
	Path   string        // Output path; format inferred from extension when Format empty
	Format string        // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title  string        // Optional title rendered in the header block
	Report *model.Report // Report to render
}

// SaveBarSnapshot renders a static status-bar snapshot (SVG or PNG): one
// stacked pass/fail bar per module with count labels, plus a summary header.
func SaveBarSnapshot(opts BarSnapshotOptions) error {
	if opts.Report == nil || len(opts.Report.Modules) == 0 {
		return fmt.Errorf("no modules to export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg" // safe default
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout := buildLayout(opts)

	switch format {
	case "svg":
		return renderSVG(opts.Path, layout)
	case "png":
		return renderPNG(opts.Path, layout)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

// --- layout computation ----------------------------------------------------

type layoutRow struct {
	Key     string
	Title   string
	Summary summary.Summary
	Pass    summary.Segment
	Fail    summary.Segment
	Y       float64
}

type layoutResult struct {
	Rows    []layoutRow
	Width   int
	Height  int
	Header  float64
	BarX    float64
	BarW    float64
	BarH    float64
	Summary summaryInfo
}

type summaryInfo struct {
	Title        string
	ModuleCount  int
	SampleCount  int
	MeanPassRate float64
	WarningCount int
	WorstModule  string
}

func buildLayout(opts BarSnapshotOptions) layoutResult {
	const (
		width        = 860.0
		labelWidth   = 280.0
		padding      = 36.0
		headerHeight = 110.0
		barHeight    = 26.0
		rowGap       = 14.0
	)

	ins := analysis.Analyze(opts.Report)

	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = opts.Report.Title
	}
	if strings.TrimSpace(title) == "" {
		title = "QC Status Snapshot"
	}

	worst := "n/a"
	if len(ins.WorstModules) > 0 {
		w := ins.WorstModules[0]
		worst = fmt.Sprintf("%s (%.0f%% pass)", w.Title, w.PassRate*100)
	}

	layout := layoutResult{
		Width:  int(width),
		Header: headerHeight,
		BarX:   padding + labelWidth,
		BarW:   width - padding*2 - labelWidth,
		BarH:   barHeight,
		Summary: summaryInfo{
			Title:        title,
			ModuleCount:  ins.ModuleCount,
			SampleCount:  ins.SampleCount,
			MeanPassRate: ins.MeanPassRate,
			WarningCount: ins.WarningCount,
			WorstModule:  worst,
		},
	}

	y := padding + headerHeight
	for _, mod := range opts.Report.Modules {
		agg := summary.Aggregate(mod.Statuses)
		if agg.Total == 0 {
			continue
		}
		pass, fail := summary.AllocateWidths(agg)
		layout.Rows = append(layout.Rows, layoutRow{
			Key:     mod.Key,
			Title:   truncate(mod.Title(), 38),
			Summary: agg,
			Pass:    pass,
			Fail:    fail,
			Y:       y,
		})
		y += barHeight + rowGap
	}
	layout.Height = int(y + padding)
	if layout.Height < 320 {
		layout.Height = 320
	}

	return layout
}

// --- rendering -------------------------------------------------------------

var (
	colorPass     = color.RGBA{0x5c, 0xb8, 0x5c, 0xff}
	colorFail     = color.RGBA{0xd9, 0x53, 0x4f, 0xff}
	colorWarn     = color.RGBA{0xf0, 0xad, 0x4e, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
)

func renderPNG(path string, layout layoutResult) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(layout.Width)-32, layout.Header-24, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)

	drawSummaryBlock(dc, layout)

	for _, row := range layout.Rows {
		drawRow(dc, layout, row)
	}

	return dc.SavePNG(path)
}

func drawRow(dc *gg.Context, layout layoutResult, row layoutRow) {
	dc.SetColor(colorText)
	dc.DrawStringAnchored(row.Title, 36, row.Y+layout.BarH/2, 0, 0.5)

	passW := layout.BarW * row.Pass.Width / 100
	failW := layout.BarW - passW

	if passW > 0 {
		dc.SetColor(colorPass)
		dc.DrawRectangle(layout.BarX, row.Y, passW, layout.BarH)
		dc.Fill()
	}
	if failW > 0 {
		dc.SetColor(colorFail)
		dc.DrawRectangle(layout.BarX+passW, row.Y, failW, layout.BarH)
		dc.Fill()
	}
	dc.SetColor(colorStroke)
	dc.SetLineWidth(1)
	dc.DrawRectangle(layout.BarX, row.Y, layout.BarW, layout.BarH)
	dc.Stroke()

	// count labels inside the segments
	dc.SetColor(colorText)
	if row.Summary.PassCount > 0 {
		dc.DrawStringAnchored(fmt.Sprintf("%d", row.Summary.PassCount),
			layout.BarX+passW/2, row.Y+layout.BarH/2, 0.5, 0.5)
	}
	if row.Summary.FailCount > 0 {
		dc.DrawStringAnchored(fmt.Sprintf("%d", row.Summary.FailCount),
			layout.BarX+passW+failW/2, row.Y+layout.BarH/2, 0.5, 0.5)
	}

	if row.Summary.WarningPresent {
		dc.SetColor(colorWarn)
		dc.DrawCircle(layout.BarX+layout.BarW+12, row.Y+layout.BarH/2, 5)
		dc.Fill()
	}
}

func drawSummaryBlock(dc *gg.Context, layout layoutResult) {
	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.Summary.Title, 32, 40, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(fmt.Sprintf("modules: %d  samples: %d", layout.Summary.ModuleCount, layout.Summary.SampleCount), 32, 58, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("mean pass rate: %.1f%%  warnings: %d", layout.Summary.MeanPassRate*100, layout.Summary.WarningCount), 32, 74, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("worst module: %s", layout.Summary.WorstModule), 32, 90, 0, 0.5)
}

func renderSVG(path string, layout layoutResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderSVGToWriter(file, layout)
}

func renderSVGToWriter(w io.Writer, layout layoutResult) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, layout.Width-32, int(layout.Header-24), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	drawSummaryBlockSVG(canvas, layout)

	for _, row := range layout.Rows {
		drawRowSVG(canvas, layout, row)
	}

	canvas.End()
	return nil
}

func drawRowSVG(canvas *svg.SVG, layout layoutResult, row layoutRow) {
	y := int(row.Y)
	barH := int(layout.BarH)
	midY := y + barH/2 + 4

	canvas.Text(36, midY, row.Title,
		fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorText)))

	passW := layout.BarW * row.Pass.Width / 100
	failW := layout.BarW - passW

	if passW > 0 {
		canvas.Rect(int(layout.BarX), y, int(passW), barH, fmt.Sprintf("fill:%s", css(colorPass)))
	}
	if failW > 0 {
		canvas.Rect(int(layout.BarX+passW), y, int(failW), barH, fmt.Sprintf("fill:%s", css(colorFail)))
	}
	canvas.Rect(int(layout.BarX), y, int(layout.BarW), barH,
		fmt.Sprintf("fill:none;stroke:%s;stroke-width:1", css(colorStroke)))

	style := fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;text-anchor:middle", css(colorText))
	if row.Summary.PassCount > 0 {
		canvas.Text(int(layout.BarX+passW/2), midY, fmt.Sprintf("%d", row.Summary.PassCount), style)
	}
	if row.Summary.FailCount > 0 {
		canvas.Text(int(layout.BarX+passW+failW/2), midY, fmt.Sprintf("%d", row.Summary.FailCount), style)
	}

	if row.Summary.WarningPresent {
		canvas.Circle(int(layout.BarX+layout.BarW)+12, y+barH/2, 5, fmt.Sprintf("fill:%s", css(colorWarn)))
	}
}

func drawSummaryBlockSVG(canvas *svg.SVG, layout layoutResult) {
	canvas.Text(32, 44, layout.Summary.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 62, fmt.Sprintf("modules: %d  samples: %d", layout.Summary.ModuleCount, layout.Summary.SampleCount),
		fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	canvas.Text(32, 78, fmt.Sprintf("mean pass rate: %.1f%%  warnings: %d", layout.Summary.MeanPassRate*100, layout.Summary.WarningCount),
		fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	canvas.Text(32, 94, fmt.Sprintf("worst module: %s", layout.Summary.WorstModule),
		fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
