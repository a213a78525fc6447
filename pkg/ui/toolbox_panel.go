package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/qcview/pkg/toolbox"
)

// ToolboxPanel is the side panel showing the shared filter state: highlight
// entries with their swatches, hide entries with the mode flags, and a text
// input for adding manual patterns to the focused list.
type ToolboxPanel struct {
	theme   Theme
	state   *toolbox.State
	focused toolbox.Panel
	input   textinput.Model
	typing  bool
	width   int
}

// NewToolboxPanel builds the panel over the shared state.
func NewToolboxPanel(state *toolbox.State, theme Theme) ToolboxPanel {
	ti := textinput.New()
	ti.Placeholder = "pattern"
	ti.CharLimit = 120
	ti.Width = 24

	return ToolboxPanel{
		theme:   theme,
		state:   state,
		focused: toolbox.PanelHighlight,
		input:   ti,
	}
}

// Focus switches the focused sub-panel.
func (p *ToolboxPanel) Focus(panel toolbox.Panel) {
	p.focused = panel
}

// Focused returns the focused sub-panel.
func (p ToolboxPanel) Focused() toolbox.Panel {
	return p.focused
}

// Typing reports whether the pattern input is capturing keys.
func (p ToolboxPanel) Typing() bool {
	return p.typing
}

// SetWidth sets the rendered panel width.
func (p *ToolboxPanel) SetWidth(w int) {
	p.width = w
	if w > 8 {
		p.input.Width = w - 8
	}
}

// Update handles key input while the panel has focus. Returns true when the
// key was consumed.
func (p *ToolboxPanel) Update(msg tea.Msg) (tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}

	if p.typing {
		switch keyMsg.String() {
		case "enter":
			pattern := strings.TrimSpace(p.input.Value())
			if pattern != "" {
				p.commit(pattern)
			}
			p.input.SetValue("")
			p.input.Blur()
			p.typing = false
			return nil, true
		case "esc":
			p.input.SetValue("")
			p.input.Blur()
			p.typing = false
			return nil, true
		default:
			var cmd tea.Cmd
			p.input, cmd = p.input.Update(msg)
			return cmd, true
		}
	}

	switch keyMsg.String() {
	case "tab":
		if p.focused == toolbox.PanelHighlight {
			p.focused = toolbox.PanelHide
		} else {
			p.focused = toolbox.PanelHighlight
		}
		return nil, true
	case "a":
		p.typing = true
		return p.input.Focus(), true
	case "r":
		p.state.Regex = !p.state.Regex
		return nil, true
	case "m":
		p.state.ShowOnlyMatching = !p.state.ShowOnlyMatching
		return nil, true
	case "x":
		if p.focused == toolbox.PanelHighlight {
			p.state.Highlights = nil
		} else {
			p.state.ClearHides()
		}
		return nil, true
	case "n":
		p.state.NextColor()
		return nil, true
	}
	return nil, false
}

// commit appends the manual pattern to the focused list. Manual highlight
// entries take the rotation color, same as popover-driven ones.
func (p *ToolboxPanel) commit(pattern string) {
	if p.focused == toolbox.PanelHighlight {
		p.state.AppendHighlight(pattern)
		p.state.NextColor()
		return
	}
	p.state.AppendHide(pattern)
}

// View renders the panel.
func (p ToolboxPanel) View() string {
	var b strings.Builder

	title := func(panel toolbox.Panel, label string) string {
		if p.focused == panel {
			return p.theme.PrimaryBold.Render("▸ " + label)
		}
		return p.theme.MutedText.Render("  " + label)
	}

	b.WriteString(title(toolbox.PanelHighlight, "Highlight"))
	b.WriteString("\n")
	if len(p.state.Highlights) == 0 {
		b.WriteString(p.theme.MutedText.Render("  (none)"))
		b.WriteString("\n")
	}
	for _, e := range p.state.Highlights {
		swatch := p.theme.Renderer.NewStyle().Foreground(lipgloss.Color(e.Color)).Render("■")
		b.WriteString(fmt.Sprintf("  %s %s\n", swatch, truncate(e.Pattern, 22)))
	}

	next := p.theme.Renderer.NewStyle().Foreground(lipgloss.Color(p.state.PickerColor)).Render("■")
	b.WriteString(p.theme.MutedText.Render(fmt.Sprintf("  next color %s (%d/%d)",
		next, p.state.ColorIndex()+1, len(p.state.Palette()))))
	b.WriteString("\n\n")

	b.WriteString(title(toolbox.PanelHide, "Hide"))
	mode := "hide matching"
	if p.state.ShowOnlyMatching {
		mode = "show only"
	}
	b.WriteString(p.theme.MutedText.Render(fmt.Sprintf("  [%s]", mode)))
	b.WriteString("\n")
	if len(p.state.Hides) == 0 {
		b.WriteString(p.theme.MutedText.Render("  (none)"))
		b.WriteString("\n")
	}
	for _, e := range p.state.Hides {
		b.WriteString(fmt.Sprintf("  · %s\n", truncate(e.Pattern, 24)))
	}

	b.WriteString("\n")
	regex := "off"
	if p.state.Regex {
		regex = "on"
	}
	b.WriteString(p.theme.MutedText.Render("regex: " + regex))
	b.WriteString("\n")

	if p.typing {
		b.WriteString(p.input.View())
		b.WriteString("\n")
	} else {
		b.WriteString(p.theme.MutedText.Render("a add · tab switch · r regex\nm mode · x clear · n color"))
		b.WriteString("\n")
	}

	return p.theme.PanelBorder.Render(b.String())
}
