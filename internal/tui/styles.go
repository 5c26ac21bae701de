package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	colorBrand   = lipgloss.Color("#00AAFF") // header blue
	colorAccent  = lipgloss.Color("#00FFCC") // selection teal
	colorOnline  = lipgloss.Color("#00FF66")
	colorOffline = lipgloss.Color("#FF3366")
	colorWarning = lipgloss.Color("#FF6600")
	colorMuted   = lipgloss.Color("#5555AA")
	colorBgAlt   = lipgloss.Color("#101018")
)

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand).
			Background(colorBgAlt)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand)

	dimmedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	onlineStyle = lipgloss.NewStyle().
			Foreground(colorOnline)

	offlineStyle = lipgloss.NewStyle().
			Foreground(colorOffline)

	noticeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWarning)

	selectedItemStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)

	itemStyle = lipgloss.NewStyle()

	outboundStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF66"))

	inboundStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00CCFF"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	inputPromptStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)
)

// StatusStyle picks the style for a connection state token.
func StatusStyle(connected bool) lipgloss.Style {
	if connected {
		return onlineStyle
	}
	return offlineStyle
}
