package toolbox_test

import (
	"testing"

	"github.com/vanderheijden86/qcview/pkg/toolbox"
)

func TestColorRotationWraps(t *testing.T) {
	s := toolbox.NewState([]string{"#111111", "#222222"})

	if got := s.CurrentColor(); got != "#111111" {
		t.Fatalf("CurrentColor = %s, want #111111", got)
	}

	s.NextColor()
	if got := s.CurrentColor(); got != "#222222" {
		t.Errorf("after one advance: %s, want #222222", got)
	}
	if s.PickerColor != "#222222" {
		t.Errorf("picker not synced: %s", s.PickerColor)
	}

	s.NextColor()
	if got := s.CurrentColor(); got != "#111111" {
		t.Errorf("rotation did not wrap: %s", got)
	}
	if s.ColorIndex() != 0 {
		t.Errorf("ColorIndex = %d, want 0 after wrap", s.ColorIndex())
	}
}

func TestNewStateDefaultPalette(t *testing.T) {
	s := toolbox.NewState(nil)
	if len(s.Palette()) == 0 {
		t.Fatal("empty palette")
	}
	if s.PickerColor != s.CurrentColor() {
		t.Error("picker not initialized to current color")
	}
}

func TestAppendHighlightUsesCurrentColor(t *testing.T) {
	s := toolbox.NewState([]string{"#aa0000", "#00bb00"})
	s.AppendHighlight("sampleA")
	s.AppendHighlight("sampleB")

	if len(s.Highlights) != 2 {
		t.Fatalf("len(Highlights) = %d", len(s.Highlights))
	}
	for _, e := range s.Highlights {
		if e.Color != "#aa0000" {
			t.Errorf("entry %q color = %s, want #aa0000 (rotation not yet advanced)", e.Pattern, e.Color)
		}
	}
}

func TestHighlightColorForSubstring(t *testing.T) {
	s := toolbox.NewState(nil)
	s.AppendHighlight("SRR1")
	s.NextColor()
	s.AppendHighlight("SRR2")

	c1, ok := s.HighlightColorFor("SRR100_trimmed")
	if !ok || c1 != s.Palette()[0] {
		t.Errorf("SRR100_trimmed -> %q/%v, want first palette color", c1, ok)
	}
	if _, ok := s.HighlightColorFor("ERR42"); ok {
		t.Error("ERR42 unexpectedly matched")
	}
}

func TestHighlightColorForRegex(t *testing.T) {
	s := toolbox.NewState(nil)
	s.Regex = true
	s.AppendHighlight("^SRR[0-9]+$")

	if _, ok := s.HighlightColorFor("SRR123"); !ok {
		t.Error("regex entry did not match SRR123")
	}
	if _, ok := s.HighlightColorFor("xSRR123"); ok {
		t.Error("anchored regex matched xSRR123")
	}

	// Invalid patterns never match rather than erroring the render path.
	s.AppendHighlight("([")
	if _, ok := s.HighlightColorFor("(["); ok {
		t.Error("invalid regex pattern matched")
	}
}

func TestVisibleHideMode(t *testing.T) {
	s := toolbox.NewState(nil)
	s.AppendHide("bad")

	if s.Visible("bad_sample") {
		t.Error("matching sample visible in hide mode")
	}
	if !s.Visible("good_sample") {
		t.Error("non-matching sample hidden in hide mode")
	}
}

func TestVisibleShowOnlyMode(t *testing.T) {
	s := toolbox.NewState(nil)
	s.ShowOnlyMatching = true
	s.AppendHide("keep")

	if !s.Visible("keep_me") {
		t.Error("matching sample hidden in show-only mode")
	}
	if s.Visible("drop_me") {
		t.Error("non-matching sample visible in show-only mode")
	}
}

func TestVisibleNoEntries(t *testing.T) {
	s := toolbox.NewState(nil)
	s.ShowOnlyMatching = true
	if !s.Visible("anything") {
		t.Error("empty hide list must leave everything visible")
	}
}
