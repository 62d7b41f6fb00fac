package components

import "github.com/charmbracelet/lipgloss"

var dialogStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorBorder).
	Padding(1, 2).
	Width(44)

// ConfirmDialog renders a yes/no confirmation.
func ConfirmDialog(title, message string) string {
	header := boxHeaderStyle.Render(SanitizeOneLine(title))
	body := lipgloss.NewStyle().Foreground(colorMuted).Render(SanitizeText(message))
	hint := lipgloss.NewStyle().Foreground(colorMuted).Render("\n\ny: confirm | n: cancel")
	return dialogStyle.Render(header + "\n\n" + body + hint)
}
