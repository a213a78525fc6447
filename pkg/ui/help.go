package ui

import (
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# qcv

Terminal viewer for QC status reports.

## Navigation

| Key | Action |
|-----|--------|
| j / k | next / previous module |
| h / l | focus pass / fail segment |
| g / G | first / last module |
| enter | pin the focused popover |
| esc | close all popovers |

## Actions

| Key | Action |
|-----|--------|
| H | highlight the popover's samples |
| O | show only the popover's samples |
| y | copy the popover's samples |
| t | toggle the toolbox panel |

Highlighting assigns every sample the current rotation color, then advances
the rotation. Show-only overwrites existing hide filters; you will be asked
to confirm if any exist.

## Other

| Key | Action |
|-----|--------|
| ? | toggle this help |
| q | quit |
`

// renderHelp renders the help overlay with glamour, falling back to the raw
// markdown when the renderer cannot be built.
func renderHelp(width int) string {
	if width < 30 {
		width = 30
	}
	if width > 78 {
		width = 78
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
