package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const bannerArt = `
 ╻┏ ┏━╸╻ ╻┏━┓╺┳┓┏┳┓╻┏┓╻
 ┣┻┓┣╸ ┗┳┛┣━┫ ┃┃┃┃┃┃┃┗┫
 ╹ ╹┗━╸ ╹ ╹ ╹╺┻┛╹ ╹╹╹ ╹`

// RenderBanner returns the styled banner with its subtitle underlined.
func RenderBanner() string {
	lines := strings.Split(strings.TrimPrefix(bannerArt, "\n"), "\n")

	maxWidth := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > maxWidth {
			maxWidth = w
		}
	}

	rendered := make([]string, 0, len(lines))
	for _, line := range lines {
		rendered = append(rendered, BannerStyle.Render(line))
	}

	subtitleText := "API key administration"
	blockWidth := maxWidth
	if w := lipgloss.Width(subtitleText); w > blockWidth {
		blockWidth = w
	}
	subtitle := MutedStyle.Width(blockWidth).Align(lipgloss.Center).Render(subtitleText)
	underline := lipgloss.NewStyle().
		Foreground(ColorBorder).
		Width(blockWidth).
		Align(lipgloss.Center).
		Render(strings.Repeat("─", lipgloss.Width(subtitleText)))

	return "\n" + strings.Join(rendered, "\n") + "\n\n" + subtitle + "\n" + underline + "\n"
}
