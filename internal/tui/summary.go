package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Row is a key-value pair in the run summary.
type Row struct {
	Key   string
	Value string
}

// Interactive reports whether stdout is attached to a terminal. In CI the
// pipeline sticks to structured logs.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// RenderSummary renders the run outcome and detail rows in a bordered box.
func RenderSummary(outcome string, rows []Row) string {
	theme := DefaultTheme

	var outcomeColor lipgloss.Color
	switch outcome {
	case "success":
		outcomeColor = theme.Success
	case "unstable":
		outcomeColor = theme.Warning
	default:
		outcomeColor = theme.Error
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(outcomeColor).Render(outcome)
	keyStyle := lipgloss.NewStyle().Foreground(theme.Dim).Width(14)
	valueStyle := lipgloss.NewStyle().Foreground(theme.Accent)

	content := title + "\n"
	for _, row := range rows {
		content += fmt.Sprintf("%s %s\n", keyStyle.Render(row.Key), valueStyle.Render(row.Value))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)
	return box.Render(content)
}
