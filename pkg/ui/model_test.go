package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/qcview/pkg/config"
	"github.com/vanderheijden86/qcview/pkg/model"
)

func testUIReport() *model.Report {
	return &model.Report{
		Title: "Run 42",
		Modules: []model.Module{
			{Key: "per_base_quality", Statuses: model.SampleStatusMap{
				"s3": "fail", "s1": "pass", "s2": "pass",
			}},
			{Key: "adapter_content", Statuses: model.SampleStatusMap{
				"s1": "pass", "s2": "pass", "warning": true,
			}},
		},
	}
}

func newTestModel() Model {
	return NewModel(testUIReport(), config.DefaultConfig())
}

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestViewRendersModuleTitles(t *testing.T) {
	out := stripAnsi(newTestModel().View())
	if !strings.Contains(out, "Run 42") {
		t.Error("title missing from view")
	}
	if !strings.Contains(out, "Per base quality") {
		t.Error("module title missing from view")
	}
	if !strings.Contains(out, "Adapter content") {
		t.Error("second module title missing from view")
	}
}

func TestViewShowsWarningBanner(t *testing.T) {
	out := stripAnsi(newTestModel().View())
	if !strings.Contains(out, "warning") {
		t.Error("warning banner missing for adapter_content")
	}
}

func TestSegmentFocusBuildsPopoverLazily(t *testing.T) {
	m := newTestModel()
	if m.popovers.Len() != 0 {
		t.Fatal("popovers built before any hover")
	}

	m = press(m, "h")
	if m.popovers.Len() != 1 {
		t.Fatalf("popovers = %d after first hover, want 1", m.popovers.Len())
	}

	// Repeat hover is a no-op.
	m = press(m, "h")
	if m.popovers.Len() != 1 {
		t.Errorf("popovers = %d after repeat hover, want 1", m.popovers.Len())
	}

	out := stripAnsi(m.View())
	if !strings.Contains(out, "s1") || !strings.Contains(out, "s2") {
		t.Error("pass popover samples missing from view")
	}
}

func TestEscClosesAllPopovers(t *testing.T) {
	m := newTestModel()
	m = press(m, "h")
	m = press(m, "enter") // pin
	m = press(m, "esc")

	if len(m.pinned) != 0 {
		t.Error("pinned popovers survived esc")
	}
	if m.segment != "" {
		t.Error("segment focus survived esc")
	}
}

func TestHighlightActionRotatesOncePerAction(t *testing.T) {
	m := newTestModel()
	m = press(m, "h") // pass popover: s1, s2
	m = press(m, "H")

	tb := m.Toolbox()
	if len(tb.Highlights) != 2 {
		t.Fatalf("highlights = %d, want 2", len(tb.Highlights))
	}
	// Both entries share the color at index 0; rotation advanced once.
	if tb.Highlights[0].Color != tb.Highlights[1].Color {
		t.Error("entries from one action got different colors")
	}
	if tb.Highlights[0].Color != tb.Palette()[0] {
		t.Errorf("entry color = %s, want palette[0]", tb.Highlights[0].Color)
	}
	if tb.ColorIndex() != 1 {
		t.Errorf("rotation index = %d, want 1", tb.ColorIndex())
	}
	if tb.PickerColor != tb.Palette()[1] {
		t.Error("picker not synced to new rotation color")
	}

	// Action opens the toolbox and closes the popover.
	if !m.toolboxOpen {
		t.Error("toolbox not opened after highlight")
	}
	if m.segment != "" {
		t.Error("originating popover not closed")
	}
	if m.bridge.highlightApplies != 1 {
		t.Errorf("highlight reapply hook fired %d times, want 1", m.bridge.highlightApplies)
	}
}

func TestShowOnlyWithoutConflictSkipsConfirm(t *testing.T) {
	m := newTestModel()
	m = press(m, "l") // fail popover: s3
	updated, _ := m.actionShowOnly()
	m = updated

	tb := m.Toolbox()
	if m.showConfirm {
		t.Error("confirm modal shown with empty hide list")
	}
	if len(tb.Hides) != 1 || tb.Hides[0].Pattern != "s3" {
		t.Errorf("hides = %+v, want [s3]", tb.Hides)
	}
	if !tb.ShowOnlyMatching {
		t.Error("mode not forced to show-only")
	}
	if tb.Regex {
		t.Error("regex not forced off")
	}
	if m.bridge.hideApplies != 1 {
		t.Errorf("hide reapply hook fired %d times, want 1", m.bridge.hideApplies)
	}
}

func TestShowOnlyConflictRequiresConfirm(t *testing.T) {
	m := newTestModel()
	m.Toolbox().AppendHide("existing_1")
	m.Toolbox().AppendHide("existing_2")
	m.Toolbox().Regex = true

	m = press(m, "l")
	updated, _ := m.actionShowOnly()
	m = updated

	if !m.showConfirm {
		t.Fatal("no confirm modal despite existing hide entries")
	}
	// Nothing mutated while the modal is pending.
	if len(m.Toolbox().Hides) != 2 {
		t.Errorf("hides mutated before confirmation: %+v", m.Toolbox().Hides)
	}

	// Decline.
	m = m.finishShowOnlyForTest(false)
	tb := m.Toolbox()
	if len(tb.Hides) != 2 || tb.Hides[0].Pattern != "existing_1" || tb.Hides[1].Pattern != "existing_2" {
		t.Errorf("declined confirm mutated hides: %+v", tb.Hides)
	}
	if tb.ShowOnlyMatching {
		t.Error("declined confirm flipped mode")
	}
	if !tb.Regex {
		t.Error("declined confirm flipped regex")
	}
	if m.bridge.hideApplies != 0 {
		t.Error("declined confirm fired reapply hook")
	}
}

func TestShowOnlyConfirmedOverwrites(t *testing.T) {
	m := newTestModel()
	m.Toolbox().AppendHide("existing")

	m = press(m, "l")
	updated, _ := m.actionShowOnly()
	m = updated
	m = m.finishShowOnlyForTest(true)

	tb := m.Toolbox()
	if len(tb.Hides) != 1 || tb.Hides[0].Pattern != "s3" {
		t.Errorf("hides = %+v, want overwritten to [s3]", tb.Hides)
	}
	if !tb.ShowOnlyMatching {
		t.Error("mode not forced to show-only")
	}
}

// finishShowOnlyForTest drives the post-confirm path directly, bypassing the
// huh form's own key handling.
func (m Model) finishShowOnlyForTest(confirmed bool) Model {
	m.showConfirm = false
	m.confirmForm = nil
	return m.finishShowOnly(confirmed)
}

func TestReloadResetsPopoversAndClampsCursor(t *testing.T) {
	m := newTestModel()
	m = press(m, "G") // cursor to last module
	m = press(m, "h")
	if m.popovers.Len() == 0 {
		t.Fatal("no popover built")
	}

	m.SetReload(func() (*model.Report, error) {
		return &model.Report{
			Title: "Run 43",
			Modules: []model.Module{
				{Key: "per_base_quality", Statuses: model.SampleStatusMap{"s1": "pass"}},
			},
		}, nil
	})

	updated, _ := m.Update(FileChangedMsg{})
	m = updated.(Model)

	if m.popovers.Len() != 0 {
		t.Error("stale popovers survived reload")
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d after shrink, want 0", m.cursor)
	}
	if !strings.Contains(stripAnsi(m.View()), "Run 43") {
		t.Error("reloaded title missing")
	}
}

func TestToolboxPanelToggle(t *testing.T) {
	m := newTestModel()
	if m.toolboxOpen {
		t.Fatal("toolbox open by default")
	}
	m = press(m, "t")
	if !m.toolboxOpen {
		t.Error("t did not open toolbox")
	}
	out := stripAnsi(m.View())
	if !strings.Contains(out, "Highlight") || !strings.Contains(out, "Hide") {
		t.Error("toolbox panel content missing")
	}
	m = press(m, "t")
	if m.toolboxOpen {
		t.Error("t did not close toolbox")
	}
}

func TestHelpOverlayToggle(t *testing.T) {
	m := newTestModel()
	m = press(m, "?")
	if !m.showHelp {
		t.Fatal("? did not open help")
	}
	if !strings.Contains(stripAnsi(m.View()), "qcv") {
		t.Error("help content missing")
	}
	m = press(m, "?")
	if m.showHelp {
		t.Error("? did not close help")
	}
}

func TestRobotSummary(t *testing.T) {
	out := RenderRobotSummary(testUIReport())

	for _, want := range []string{
		"Run 42",
		"per_base_quality",
		"pass=2 (66.7%) fail=1 (33.3%)",
		"failing: s3",
		"WARNING",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("robot summary missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b") {
		t.Error("robot summary contains ANSI escapes")
	}
}
