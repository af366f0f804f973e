// Package searchbox is the search input shared by keyword search and
// ask-AI mode. It decides where every keystroke goes based on the active
// mode and on whether an answer is streaming; it owns neither.
package searchbox

import (
	"github.com/bunchhieng/docsearch/internal/askai"
	"github.com/bunchhieng/docsearch/internal/search"
)

// Mode of the search input.
type Mode int

const (
	ModeKeywordSearch Mode = iota
	ModeAskAI
)

func (m Mode) String() string {
	if m == ModeAskAI {
		return "ask-ai"
	}
	return "keyword-search"
}

// State is derived from the two engines on every Update and View and is
// never stored.
type State struct {
	Mode     Mode
	Busy     bool
	Loading  bool
	Query    string
	AIStatus askai.Status
	KwStatus search.Status
}

// AskAIActive reports whether the input is in ask-AI mode.
func (s State) AskAIActive() bool {
	return s.Mode == ModeAskAI
}

// Derive computes the input state from the externally owned mode flag and
// the two engines' states.
func Derive(askAIActive bool, ai askai.Status, kw search.State) State {
	mode := ModeKeywordSearch
	if askAIActive {
		mode = ModeAskAI
	}
	return State{
		Mode:     mode,
		Busy:     ai.Busy(),
		Loading:  kw.Status == search.StatusStalled,
		Query:    kw.Query,
		AIStatus: ai,
		KwStatus: kw.Status,
	}
}

// EnterKeyHint is the soft-keyboard hint for the enter key.
func (s State) EnterKeyHint() string {
	if s.AskAIActive() {
		return "enter"
	}
	return "search"
}

// Disabled reports whether the input accepts text.
func (s State) Disabled() bool {
	return s.Busy
}
