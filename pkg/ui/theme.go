package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/prsconf/pkg/model"
)

// Theme carries the palette and the renderer styles are built from.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor

	Base     lipgloss.Style
	Selected lipgloss.Style
	Current  lipgloss.Style
}

// DefaultTheme builds the Dracula-like palette for a renderer.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Highlight: lipgloss.AdaptiveColor{Light: "#0A7EA4", Dark: "#8BE9FD"},
		Muted:     lipgloss.AdaptiveColor{Light: "#999999", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#444444", Dark: "#BFBFBF"},
		Border:    lipgloss.AdaptiveColor{Light: "#DDDDDD", Dark: "#44475A"},
		Success:   lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#50FA7B"},
		Danger:    lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#FF5555"},
		Warning:   lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#FFB86C"},
	}
	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#F8F8F2"})
	t.Selected = r.NewStyle().
		Background(lipgloss.AdaptiveColor{Light: "#E8E0FF", Dark: "#44475A"}).
		Bold(true)
	t.Current = r.NewStyle().Foreground(t.Primary).Bold(true)
	return t
}

// KindColor returns the icon color of an entity kind.
func (t Theme) KindColor(k model.EntityKind) lipgloss.AdaptiveColor {
	switch k {
	case model.KindObject:
		return t.Primary
	case model.KindTag:
		return t.Highlight
	case model.KindAlert:
		return t.Danger
	case model.KindMethod:
		return t.Success
	case model.KindSchedule:
		return t.Warning
	default:
		return t.Muted
	}
}
