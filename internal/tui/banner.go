package tui

import "github.com/charmbracelet/lipgloss"

var bannerStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#f1c40f")).
	Bold(true)

// Banner is the ASCII art displayed on console startup.
const Banner = `        __          __          __
.-----.|  |--.-----.|  |--.-----.|  |_
|   _  ||     |  _  ||  _  |  _  ||   _|
|__|   ||__|__|_____||_____|_____||____|`

// RenderBanner returns the styled banner followed by a usage hint.
func RenderBanner() string {
	return bannerStyle.Render(Banner) + "\n\nType `help` for commands, Tab to complete, Ctrl+C to quit.\n"
}
