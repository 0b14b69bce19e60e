package ui

import "github.com/charmbracelet/lipgloss"

// theme is the resolved color set for the dashboard panels.
type theme struct {
	name      string
	accent    lipgloss.Color
	dim       lipgloss.Color
	good      lipgloss.Color
	warn      lipgloss.Color
	bad       lipgloss.Color
	highlight lipgloss.Color
}

var themes = map[string]theme{
	"ocean": {
		name:      "ocean",
		accent:    lipgloss.Color("39"),
		dim:       lipgloss.Color("244"),
		good:      lipgloss.Color("42"),
		warn:      lipgloss.Color("214"),
		bad:       lipgloss.Color("196"),
		highlight: lipgloss.Color("45"),
	},
	"forest": {
		name:      "forest",
		accent:    lipgloss.Color("34"),
		dim:       lipgloss.Color("245"),
		good:      lipgloss.Color("40"),
		warn:      lipgloss.Color("178"),
		bad:       lipgloss.Color("160"),
		highlight: lipgloss.Color("82"),
	},
	"amber": {
		name:      "amber",
		accent:    lipgloss.Color("208"),
		dim:       lipgloss.Color("243"),
		good:      lipgloss.Color("106"),
		warn:      lipgloss.Color("220"),
		bad:       lipgloss.Color("124"),
		highlight: lipgloss.Color("215"),
	},
}

func themeByName(name string) theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes["ocean"]
}

func (t theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.accent)
}

func (t theme) panelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.dim).
		Padding(0, 1)
}

func (t theme) selectedCardStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.highlight).
		Padding(0, 1)
}

func (t theme) dimStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.dim)
}

func (t theme) statusColor(status string) lipgloss.Color {
	switch status {
	case "breached":
		return t.bad
	case "declining":
		return t.warn
	case "under_investigation":
		return t.highlight
	default:
		return t.good
	}
}
