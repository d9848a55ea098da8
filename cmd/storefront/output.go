package main

import (
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/erazemk/storefront/internal/quote"
)

var badgeColors = map[quote.Color]lipgloss.Color{
	quote.ColorYellow: lipgloss.Color("3"),
	quote.ColorBlue:   lipgloss.Color("4"),
	quote.ColorGreen:  lipgloss.Color("2"),
	quote.ColorPurple: lipgloss.Color("5"),
	quote.ColorRed:    lipgloss.Color("1"),
	quote.ColorGray:   lipgloss.Color("8"),
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// badge renders a status label in its badge color.
func badge(status string) string {
	p := quote.Project(status)
	return lipgloss.NewStyle().Bold(true).Foreground(badgeColors[p.Color]).Render(p.Label)
}

func heading(s string) string {
	return headingStyle.Render(s)
}

func muted(s string) string {
	return mutedStyle.Render(s)
}

// newTable returns a tabwriter on stdout. Styled text must go in the last
// column because escape codes count towards the cell width.
func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
}
