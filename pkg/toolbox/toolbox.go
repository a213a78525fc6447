// Package toolbox holds the report-wide filter state shared by every bar:
// highlight entries with their rotation colors, hide entries with the
// show-only/hide mode, and the actions that push popover selections into them.
// The state is mutated only from the UI goroutine, so it carries no locking.
package toolbox

import (
	"regexp"
	"strings"
)

// DefaultPalette is the highlight color rotation used when the config does not
// override it. Mirrors the hues used for sample highlighting upstream.
var DefaultPalette = []string{
	"#e41a1c", "#377eb8", "#4daf4a", "#984ea3",
	"#ff7f00", "#a65628", "#f781bf", "#999999",
}

// HighlightEntry is one pattern in the highlight-filter list with the color it
// was assigned at creation time.
type HighlightEntry struct {
	Pattern string
	Color   string
}

// HideEntry is one pattern in the hide-filter list. Whether matches are hidden
// or exclusively shown depends on State.ShowOnlyMatching.
type HideEntry struct {
	Pattern string
}

// State is the explicit toolbox state object. The rotation index, the picker
// color, and both filter lists live for the page's lifetime.
type State struct {
	Highlights []HighlightEntry
	Hides      []HideEntry

	// ShowOnlyMatching selects the hide-filter mode: true means "show only
	// samples matching an entry", false means "hide matching samples".
	ShowOnlyMatching bool
	// Regex toggles regexp matching for both filter lists; off means
	// substring matching.
	Regex bool

	// PickerColor mirrors the active color-picker control; kept in sync with
	// the rotation so the next manual entry defaults to the rotation color.
	PickerColor string

	palette  []string
	colorIdx int
}

// NewState builds a State with the given palette, falling back to
// DefaultPalette when empty.
func NewState(palette []string) *State {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return &State{
		palette:     palette,
		PickerColor: palette[0],
	}
}

// CurrentColor returns the rotation color the next highlight action will use.
func (s *State) CurrentColor() string {
	return s.palette[s.colorIdx]
}

// NextColor advances the rotation index by one, wrapping past the last
// available color, and synchronizes the picker to the new current color.
func (s *State) NextColor() {
	s.colorIdx = (s.colorIdx + 1) % len(s.palette)
	s.PickerColor = s.palette[s.colorIdx]
}

// ColorIndex returns the current rotation index.
func (s *State) ColorIndex() int { return s.colorIdx }

// Palette returns the rotation palette.
func (s *State) Palette() []string { return s.palette }

// AppendHighlight appends one highlight entry carrying the current rotation
// color. The rotation is not advanced; callers advance it once per action.
func (s *State) AppendHighlight(pattern string) {
	s.Highlights = append(s.Highlights, HighlightEntry{Pattern: pattern, Color: s.CurrentColor()})
}

// AppendHide appends one hide-filter entry.
func (s *State) AppendHide(pattern string) {
	s.Hides = append(s.Hides, HideEntry{Pattern: pattern})
}

// ClearHides discards all hide-filter entries.
func (s *State) ClearHides() {
	s.Hides = nil
}

// HighlightColorFor returns the color of the first highlight entry matching
// the sample name, honoring the regex flag.
func (s *State) HighlightColorFor(sample string) (string, bool) {
	for _, e := range s.Highlights {
		if s.matches(e.Pattern, sample) {
			return e.Color, true
		}
	}
	return "", false
}

// Visible reports whether a sample survives the hide filters. With no entries
// everything is visible; in show-only mode a sample must match some entry, in
// hide mode it must match none.
func (s *State) Visible(sample string) bool {
	if len(s.Hides) == 0 {
		return true
	}
	matched := false
	for _, e := range s.Hides {
		if s.matches(e.Pattern, sample) {
			matched = true
			break
		}
	}
	if s.ShowOnlyMatching {
		return matched
	}
	return !matched
}

func (s *State) matches(pattern, sample string) bool {
	if s.Regex {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(sample)
	}
	return strings.Contains(sample, pattern)
}
