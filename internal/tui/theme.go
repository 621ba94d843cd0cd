package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

type theme struct {
	root        lipgloss.Style
	title       lipgloss.Style
	panel       lipgloss.Style
	panelTitle  lipgloss.Style
	helpText    lipgloss.Style
	status      lipgloss.Style
	errorStatus lipgloss.Style
	celebration lipgloss.Style

	settingKey   lipgloss.Style
	settingValue lipgloss.Style
	settingPick  lipgloss.Style

	cellEmpty  lipgloss.Style
	cellCursor lipgloss.Style
	side       map[entity.Side]lipgloss.Style
}

func newTheme() theme {
	red := lipgloss.Color("#ff5f5f")
	blue := lipgloss.Color("#5fafff")
	gold := lipgloss.Color("#ffd166")
	mint := lipgloss.Color("#05ffa1")
	muted := lipgloss.Color("#9ca3d8")
	text := lipgloss.Color("#f3f3ff")

	return theme{
		root: lipgloss.NewStyle().
			Foreground(text).
			Padding(0, 1),
		title: lipgloss.NewStyle().
			Foreground(gold).
			Bold(true),
		panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		panelTitle:  lipgloss.NewStyle().Foreground(mint).Bold(true),
		helpText:    lipgloss.NewStyle().Foreground(muted),
		status:      lipgloss.NewStyle().Foreground(mint).Bold(true),
		errorStatus: lipgloss.NewStyle().Foreground(red).Bold(true),
		celebration: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1b0f35")).
			Background(gold).
			Bold(true).
			Padding(0, 2),
		settingKey:   lipgloss.NewStyle().Foreground(blue),
		settingValue: lipgloss.NewStyle().Foreground(text),
		settingPick:  lipgloss.NewStyle().Foreground(gold).Bold(true),
		cellEmpty:    lipgloss.NewStyle().Foreground(muted),
		cellCursor:   lipgloss.NewStyle().Reverse(true),
		side: map[entity.Side]lipgloss.Style{
			entity.SideRed:  lipgloss.NewStyle().Foreground(red).Bold(true),
			entity.SideBlue: lipgloss.NewStyle().Foreground(blue).Bold(true),
		},
	}
}

func (t theme) sideStyle(side entity.Side) lipgloss.Style {
	if style, ok := t.side[side]; ok {
		return style
	}
	return t.cellEmpty
}
