package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/yoanbernabeu/zoomtype/alphabet"
)

type tuiTheme struct {
	canvas      lipgloss.Style
	panel       lipgloss.Style
	title       lipgloss.Style
	subtitle    lipgloss.Style
	text        lipgloss.Style
	muted       lipgloss.Style
	ok          lipgloss.Style
	warn        lipgloss.Style
	danger      lipgloss.Style
	info        lipgloss.Style
	highlight   lipgloss.Style
	help        lipgloss.Style
	output      lipgloss.Style
	railDone    lipgloss.Style
	railCurrent lipgloss.Style
	railPending lipgloss.Style
}

// newTUITheme builds the chrome around the canvas. Accents follow the
// active colour scheme so the panels match the boxes; nil uses fixed
// defaults.
func newTUITheme(cs *alphabet.ColourScheme) tuiTheme {
	accent := lipgloss.Color("#65B5FF")
	alert := lipgloss.Color("#E06B75")
	guide := lipgloss.Color("#E7B65A")
	if cs.Len() > colourRoot {
		accent = lipgloss.Color(cs.Colour(6).Hex())
		alert = lipgloss.Color(cs.Colour(colourCrosshair).Hex())
		guide = lipgloss.Color(cs.Colour(1).Hex())
	}
	dim := lipgloss.Color("#6E7B88")
	fg := lipgloss.Color("#D7DBE0")

	return tuiTheme{
		canvas: lipgloss.NewStyle().Foreground(fg).Background(lipgloss.Color("#0E1116")),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#3D4752")).
			Padding(0, 1),
		title:       lipgloss.NewStyle().Bold(true).Foreground(accent),
		subtitle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C0C8D4")),
		text:        lipgloss.NewStyle().Foreground(fg),
		muted:       lipgloss.NewStyle().Foreground(dim),
		ok:          lipgloss.NewStyle().Foreground(lipgloss.Color("#63C17A")),
		warn:        lipgloss.NewStyle().Foreground(guide),
		danger:      lipgloss.NewStyle().Foreground(alert),
		info:        lipgloss.NewStyle().Foreground(accent),
		highlight:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0E1116")).Background(accent),
		help:        lipgloss.NewStyle().Foreground(lipgloss.Color("#8FA0B3")),
		output:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")),
		railDone:    lipgloss.NewStyle().Foreground(dim),
		railCurrent: lipgloss.NewStyle().Bold(true).Foreground(accent),
		railPending: lipgloss.NewStyle().Foreground(dim),
	}
}
