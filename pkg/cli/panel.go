package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme.
type Theme struct {
	Primary lipgloss.Color
	Dim     lipgloss.Color
	Warn    lipgloss.Color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Warn:    lipgloss.Color("#ffb454"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Warn   lipgloss.Style
	Border lipgloss.Style
	Help   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Value:  lipgloss.NewStyle(),
		Warn:   lipgloss.NewStyle().Foreground(t.Warn),
		Border: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary).Padding(0, 1),
		Help:   lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// Row is one labeled line of a panel. Warn rows are highlighted.
type Row struct {
	Label string
	Value string
	Warn  bool
}

// Panel is a titled box of aligned rows with an optional footer.
type Panel struct {
	Title  string
	Rows   []Row
	Footer string
}

// Render renders the panel with s.
func (p Panel) Render(s Styles) string {
	width := 0
	for _, r := range p.Rows {
		width = max(width, lipgloss.Width(r.Label))
	}

	lines := []string{s.Title.Render(p.Title)}
	for _, r := range p.Rows {
		label := s.Label.Render(r.Label + strings.Repeat(" ", width-lipgloss.Width(r.Label)))
		value := s.Value.Render(r.Value)
		if r.Warn {
			value = s.Warn.Render(r.Value)
		}
		lines = append(lines, label+"  "+value)
	}
	if p.Footer != "" {
		lines = append(lines, "", s.Help.Render(p.Footer))
	}
	return s.Border.Render(strings.Join(lines, "\n"))
}
