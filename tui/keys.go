package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Draw       key.Binding
	Favorite   key.Binding
	Share      key.Binding
	Shuffle    key.Binding
	Reset      key.Binding
	Mood       key.Binding
	OpenWhen   key.Binding
	Reason     key.Binding
	Daily      key.Binding
	Theme      key.Binding
	Sound      key.Binding
	Favorites  key.Binding
	FinalThree key.Binding
	Up         key.Binding
	Down       key.Binding
	Back       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Draw:       key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "draw")),
		Favorite:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		Share:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Shuffle:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shuffle")),
		Reset:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "start over")),
		Mood:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mood")),
		OpenWhen:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open when")),
		Reason:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log reason")),
		Daily:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "daily mode")),
		Theme:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "theme")),
		Sound:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "sound")),
		Favorites:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "favorites")),
		FinalThree: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "final three")),
		Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "keys")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Draw, k.Favorite, k.Reason, k.Mood, k.OpenWhen, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Draw, k.Shuffle, k.Reset, k.FinalThree},
		{k.Favorite, k.Share, k.Favorites, k.Reason},
		{k.Mood, k.OpenWhen, k.Daily},
		{k.Theme, k.Sound, k.Help, k.Quit},
	}
}
