package ui

import "github.com/charmbracelet/lipgloss"

// Shared adaptive colors used outside the Theme struct.
var (
	ColorPass = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorFail = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	ColorWarn = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}

	ColorMuted = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorInfo  = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
)
