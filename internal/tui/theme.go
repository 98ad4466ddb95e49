// Package tui renders the human-facing run summary shown when layerci runs
// in an interactive terminal.
package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the color values used by the summary renderer.
type Theme struct {
	Accent  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Dim     lipgloss.Color
	Border  lipgloss.Color
}

// DefaultTheme is tuned for dark terminals.
var DefaultTheme = Theme{
	Accent:  lipgloss.Color("#f97316"),
	Success: lipgloss.Color("#22c55e"),
	Warning: lipgloss.Color("#eab308"),
	Error:   lipgloss.Color("#ef4444"),
	Dim:     lipgloss.Color("#5a5a70"),
	Border:  lipgloss.Color("#2a2a3a"),
}
