package searchbox

import "github.com/bunchhieng/docsearch/internal/askai"

// FocusAction is a focus change requested by the FocusPolicy.
type FocusAction int

const (
	FocusInput FocusAction = iota
	SelectAll
)

// Signals are the inputs the FocusPolicy watches.
type Signals struct {
	FromSelection bool
	AIStatus      askai.Status
}

// FocusPolicy turns signal transitions into focus actions. Each rule fires
// once per transition, so observing the same signals twice is harmless.
type FocusPolicy struct {
	AutoFocus bool

	mounted       bool
	fromSelection bool
	status        askai.Status
}

// Observe records sig and returns the actions its transitions trigger:
// focus on mount when AutoFocus is set, select all when FromSelection
// turns true, and focus when an answer stops being busy.
func (p *FocusPolicy) Observe(sig Signals) []FocusAction {
	var actions []FocusAction

	if !p.mounted {
		p.mounted = true
		if p.AutoFocus {
			actions = append(actions, FocusInput)
		}
	} else if p.status.Busy() && !sig.AIStatus.Busy() {
		actions = append(actions, FocusInput)
	}

	if sig.FromSelection && !p.fromSelection {
		actions = append(actions, SelectAll)
	}

	p.fromSelection = sig.FromSelection
	p.status = sig.AIStatus
	return actions
}
