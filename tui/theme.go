package tui

import (
	"github.com/charmbracelet/lipgloss"

	"compliment-deck/model"
)

type palette struct {
	accent lipgloss.Color
	muted  lipgloss.Color
	border lipgloss.Color
}

var palettes = map[model.Theme]palette{
	model.ThemeBlush:    {accent: "211", muted: "246", border: "218"},
	model.ThemeLavender: {accent: "141", muted: "245", border: "183"},
	model.ThemeNight:    {accent: "75", muted: "240", border: "61"},
	model.ThemeSunset:   {accent: "208", muted: "244", border: "203"},
}

func paletteFor(t model.Theme) palette {
	if p, ok := palettes[t]; ok {
		return p
	}
	return palettes[model.ThemeBlush]
}
