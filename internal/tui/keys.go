package tui

import (
	"github.com/bunchhieng/docsearch/internal/searchbox"
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Quit       key.Binding
	PrevRecent key.Binding
	NextRecent key.Binding
	OpenLink   key.Binding
	Stop       key.Binding
	ClearChat  key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		PrevRecent: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "newer question")),
		NextRecent: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "older question")),
		OpenLink: key.NewBinding(
			key.WithKeys("alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6", "alt+7", "alt+8", "alt+9"),
			key.WithHelp("alt+1-9", "open link"),
		),
		Stop:       key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "stop")),
		ClearChat:  key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "clear chat")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdown", "scroll down")),
	}
}

// helpKeys combines the application and search box bindings for the help
// line of the current mode.
type helpKeys struct {
	app   keyMap
	box   searchbox.KeyMap
	askAI bool
	busy  bool
}

func (h helpKeys) ShortHelp() []key.Binding {
	if !h.askAI {
		return []key.Binding{h.box.ToggleAskAI, h.box.Reset, h.box.Close}
	}
	if h.busy {
		return []key.Binding{h.app.Stop, h.app.ScrollUp, h.app.ScrollDown, h.box.Close}
	}
	return []key.Binding{h.box.ToggleAskAI, h.app.PrevRecent, h.app.NextRecent, h.app.OpenLink, h.box.Close}
}

func (h helpKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.box.ToggleAskAI, h.box.Reset, h.box.Close, h.app.Quit},
		{h.app.PrevRecent, h.app.NextRecent, h.app.OpenLink},
		{h.app.Stop, h.app.ClearChat, h.app.ScrollUp, h.app.ScrollDown},
	}
}
