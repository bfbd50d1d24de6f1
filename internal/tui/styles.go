package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title       lipgloss.Style
	chip        lipgloss.Style
	chipActive  lipgloss.Style
	card        lipgloss.Style
	cardTitle   lipgloss.Style
	muted       lipgloss.Style
	placeholder lipgloss.Style
	err         lipgloss.Style
}

func defaultStyles() styles {
	accent := lipgloss.Color("70")
	return styles{
		title:      lipgloss.NewStyle().Bold(true).Foreground(accent),
		chip:       lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245")),
		chipActive: lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("230")).Background(accent),
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		cardTitle: lipgloss.NewStyle().Bold(true),
		muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		placeholder: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center),
		err: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}
