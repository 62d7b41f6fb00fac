package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a single Grid column.
//
// Width is the visual width of the cell content. The last column absorbs
// whatever width is left over.
type Column struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

const gridLeftOffset = 2

var (
	gridLineStyle = lipgloss.NewStyle().Foreground(colorBorder)

	gridActiveRowStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Background(lipgloss.Color("#1f2530")).
				Bold(true)

	gridActiveSepStyle = lipgloss.NewStyle().
				Foreground(colorBorder).
				Background(lipgloss.Color("#1f2530"))

	gridOnStyle = lipgloss.NewStyle().Foreground(colorOK).Bold(true)
)

// FlagOn and FlagOff are the glyphs used for boolean cells.
const (
	FlagOn  = "✓"
	FlagOff = "·"
)

// Flag renders a boolean cell.
func Flag(v bool) string {
	if v {
		return FlagOn
	}
	return FlagOff
}

// Grid renders a header, a rule and rows, highlighting the row at active
// (-1 for none). Every line is exactly width columns wide.
func Grid(columns []Column, rows [][]string, width int, active int) string {
	if width <= 0 || len(columns) == 0 {
		return ""
	}
	sep := lipgloss.RoundedBorder().Left
	cols := fitColumns(columns, width)

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
	}

	out := make([]string, 0, len(rows)+2)
	out = append(out, gridRow(cols, headers, sep, width, true, false))
	out = append(out, gridRule(cols, width))
	for i, row := range rows {
		out = append(out, gridRow(cols, row, sep, width, false, i == active))
	}
	return strings.Join(out, "\n")
}

func fitColumns(columns []Column, width int) []Column {
	fitted := make([]Column, len(columns))
	copy(fitted, columns)

	content := width - gridLeftOffset
	sum := len(fitted) - 1
	for i := range fitted {
		if fitted[i].Width < 1 {
			fitted[i].Width = 1
		}
		sum += fitted[i].Width
	}
	last := &fitted[len(fitted)-1]
	last.Width += content - sum
	if last.Width < 1 {
		last.Width = 1
	}
	return fitted
}

func gridRow(cols []Column, cells []string, sep string, width int, header, active bool) string {
	sepStyle := gridLineStyle
	if active {
		sepStyle = gridActiveSepStyle
	}
	sepText := sepStyle.Inline(true).Render(sep)

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gridLeftOffset))
	for i, col := range cols {
		if i > 0 {
			b.WriteString(sepText)
		}
		text := ""
		if i < len(cells) {
			text = cells[i]
		}
		cell := alignCell(text, col.Width, col.Align)
		switch {
		case header:
			cell = boxLabelStyle.Inline(true).Render(cell)
		case active:
			cell = gridActiveRowStyle.Inline(true).Render(cell)
		case strings.TrimSpace(text) == FlagOn:
			cell = gridOnStyle.Inline(true).Render(cell)
		}
		b.WriteString(cell)
	}
	return padRight(b.String(), width)
}

func gridRule(cols []Column, width int) string {
	h := lipgloss.RoundedBorder().Top
	cross := lipgloss.RoundedBorder().Middle
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gridLeftOffset))
	for i, col := range cols {
		b.WriteString(strings.Repeat(h, col.Width))
		if i < len(cols)-1 {
			b.WriteString(cross)
		}
	}
	return gridLineStyle.Inline(true).Render(padRight(b.String(), width))
}

func alignCell(text string, width int, align lipgloss.Position) string {
	clamped := ClampTextWidth(text, width)
	pad := width - lipgloss.Width(clamped)
	if pad <= 0 {
		return clamped
	}
	switch align {
	case lipgloss.Right:
		return strings.Repeat(" ", pad) + clamped
	case lipgloss.Center:
		left := pad / 2
		return strings.Repeat(" ", left) + clamped + strings.Repeat(" ", pad-left)
	default:
		return clamped + strings.Repeat(" ", pad)
	}
}
