package tui

import (
	"charm.land/lipgloss/v2"

	"github.com/xonecas/annotator/internal/highlight"
)

// Diff colors; these read well on light and dark themes.
const (
	colorAdded   = "#5fd700"
	colorRemoved = "#ff5f5f"
)

// Styles holds the lipgloss styles derived from the theme palette.
type Styles struct {
	BgFill     lipgloss.Style
	Gutter     lipgloss.Style
	GutterCur  lipgloss.Style
	Border     lipgloss.Style
	StatusText lipgloss.Style
	StatusKey  lipgloss.Style
	Accent     lipgloss.Style
	Error      lipgloss.Style
	Thumb      lipgloss.Style
	Track      lipgloss.Style
}

func newStyles(p highlight.Palette) Styles {
	bg := lipgloss.Color(p.Bg)
	status := lipgloss.Color(p.Border)
	return Styles{
		BgFill:     lipgloss.NewStyle().Background(bg),
		Gutter:     lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color(p.Gutter)),
		GutterCur:  lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color(p.Muted)).Bold(true),
		Border:     lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color(p.Gutter)),
		StatusText: lipgloss.NewStyle().Background(status).Foreground(lipgloss.Color(p.Muted)),
		StatusKey:  lipgloss.NewStyle().Background(status).Foreground(lipgloss.Color(p.Fg)).Bold(true),
		Accent:     lipgloss.NewStyle().Background(status).Foreground(lipgloss.Color(p.Accent)),
		Error:      lipgloss.NewStyle().Background(status).Foreground(lipgloss.Color(colorRemoved)),
		Thumb:      lipgloss.NewStyle().Background(lipgloss.Color(p.Muted)),
		Track:      lipgloss.NewStyle().Background(lipgloss.Color(p.Border)),
	}
}
