package loop

import "github.com/charmbracelet/lipgloss"

const title = "Guess the number"

var bannerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("10")).
	BorderStyle(lipgloss.NormalBorder()).
	BorderTop(true).
	BorderBottom(true).
	BorderForeground(lipgloss.Color("7"))

// Banner is printed once before the first prompt.
func Banner() string {
	return bannerStyle.Render(title)
}
