package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const tableSeparator = " "

func tableSeparatorWidth() int {
	return lipgloss.Width(tableSeparator)
}

func formatHeaderLabel(label string) string {
	return strings.ToUpper(label)
}

func renderActiveHeaderLabel(label string) string {
	return "❋ " + label
}

func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	var parts []string
	for i, cell := range cells {
		if i >= len(widths) {
			continue
		}
		parts = append(parts, style.Width(widths[i]).MaxWidth(widths[i]).Render(cell))
	}
	return strings.Join(parts, tableSeparator)
}

func renderTableDivider(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w)
	}
	return DividerStyle.Render(strings.Join(parts, tableSeparator))
}

// fitWidths gives any spare terminal width to the last column.
func fitWidths(widths []int, total int) []int {
	if len(widths) == 0 {
		return widths
	}
	used := (len(widths) - 1) * tableSeparatorWidth()
	for _, w := range widths {
		used += w
	}
	if extra := total - used - 2; extra > 0 {
		widths[len(widths)-1] += extra
	}
	return widths
}

// scrollWindow keeps cursor inside a viewport of height rows starting at offset.
func scrollWindow(cursor, offset, height, n int) int {
	if height <= 0 {
		height = 10
	}
	if cursor < offset {
		offset = cursor
	}
	if cursor >= offset+height {
		offset = cursor - height + 1
	}
	if offset > n-1 {
		offset = max(0, n-1)
	}
	return max(0, offset)
}

func renderEmpty(width, height int, msg string) string {
	return EmptyStateStyle.
		Width(width).
		Height(height).
		Render(msg)
}

func renderStatus(height int, content, status string) string {
	status = StatusBarStyle.Render(status)
	spacer := max(0, height-lipgloss.Height(content)-lipgloss.Height(status))
	return lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		lipgloss.NewStyle().Height(spacer).Render(""),
		status,
	)
}
