package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.AdaptiveColor{Light: "2", Dark: "2"}
	colorError   = lipgloss.AdaptiveColor{Light: "1", Dark: "1"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "8", Dark: "8"}
	colorPrimary = lipgloss.AdaptiveColor{Light: "5", Dark: "5"}

	styleSuccess     = lipgloss.NewStyle().Foreground(colorSuccess)
	styleError       = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleMuted       = lipgloss.NewStyle().Foreground(colorMuted)
	styleTableHeader = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

func formatSuccess(msg string) string {
	return styleSuccess.Render("✔ " + msg)
}

func formatError(msg string) string {
	return styleError.Render("✘ " + msg)
}

// table renders rows under headers with columns padded to the widest cell.
type table struct {
	headers []string
	rows    [][]string
}

func newTable(headers ...string) *table {
	return &table{headers: headers}
}

func (t *table) addRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var b strings.Builder
	b.WriteString(styleTableHeader.Render(t.line(t.headers, widths)))
	b.WriteString("\n")

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	b.WriteString(styleMuted.Render(strings.Join(sep, "  ")))
	b.WriteString("\n")

	for _, row := range t.rows {
		b.WriteString(t.line(row, widths))
		b.WriteString("\n")
	}
	return b.String()
}

func (t *table) line(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = cell + strings.Repeat(" ", w-lipgloss.Width(cell))
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
