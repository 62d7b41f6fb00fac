package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	checkCursorStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	checkLabelStyle  = lipgloss.NewStyle().Foreground(colorText)
	checkMutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
)

// Checklist is a fixed set of labelled checkboxes with a wrapping cursor.
type Checklist struct {
	Labels []string
	Cursor int
}

// NewChecklist creates a checklist over labels.
func NewChecklist(labels ...string) *Checklist {
	return &Checklist{Labels: labels}
}

// Down moves the cursor down, wrapping to the top.
func (c *Checklist) Down() {
	if len(c.Labels) == 0 {
		return
	}
	c.Cursor = (c.Cursor + 1) % len(c.Labels)
}

// Up moves the cursor up, wrapping to the bottom.
func (c *Checklist) Up() {
	if len(c.Labels) == 0 {
		return
	}
	c.Cursor = (c.Cursor - 1 + len(c.Labels)) % len(c.Labels)
}

// Selected returns the cursor index.
func (c *Checklist) Selected() int {
	return c.Cursor
}

// Render draws each box; checked reports the state of item i. focused
// controls whether the cursor is drawn.
func (c *Checklist) Render(checked func(i int) bool, focused bool) string {
	lines := make([]string, len(c.Labels))
	for i, label := range c.Labels {
		box := "[ ]"
		if checked(i) {
			box = "[x]"
		}
		switch {
		case focused && i == c.Cursor:
			lines[i] = checkCursorStyle.Render("> " + box + " " + label)
		case focused:
			lines[i] = checkLabelStyle.Render("  " + box + " " + label)
		default:
			lines[i] = checkMutedStyle.Render("  " + box + " " + label)
		}
	}
	return strings.Join(lines, "\n")
}
