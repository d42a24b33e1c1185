package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTracks())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader shows the session identity and elapsed time.
func (m Model) renderHeader() string {
	title := titleStyle.Render("cluck " + m.cfg.Version)
	elapsed := baseStyle.Render("elapsed " + formatDuration(m.Elapsed()))

	recording := 0
	for _, row := range m.rows {
		if row.State == "recording" {
			recording++
		}
	}
	counts := mutedStyle.Render(fmt.Sprintf("%d/%d tracks recording", recording, len(m.rows)))

	return lipgloss.JoinHorizontal(lipgloss.Center,
		title, "   ", elapsed, "   ", counts,
	)
}

// renderTracks shows one row per track.
func (m Model) renderTracks() string {
	if len(m.rows) == 0 {
		return boxStyle.Render(mutedStyle.Render("no tracks"))
	}

	var rows []string
	rows = append(rows, subtitleStyle.Render(
		fmt.Sprintf("  %-16s %-11s %-9s %-28s %s", "TRACK", "STATE", "ELAPSED", "DEVICE", "FILE"),
	))

	for _, row := range m.rows {
		state := stateStyle(row.State).Render(fmt.Sprintf("%-11s", row.State))
		line := fmt.Sprintf("  %-16s %s %-9s %-28s %s",
			truncate(row.Label, 16),
			state,
			formatDuration(row.Elapsed),
			truncate(row.DeviceName, 28),
			filepath.Base(row.OutputPath),
		)
		rows = append(rows, baseStyle.Render(line))
	}

	return boxStyle.Width(m.width - 2).Render(strings.Join(rows, "\n"))
}

// renderFooter shows the output directory and key hints.
func (m Model) renderFooter() string {
	dir := mutedStyle.Render("output: " + m.cfg.OutputDir)
	hint := mutedStyle.Render("q: stop and save")
	return dir + "\n" + hint
}

// truncate shortens s to max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
