package searchbox

import tea "github.com/charmbracelet/bubbletea"

// EventKind classifies an input event for routing.
type EventKind int

const (
	EventKeyUp EventKind = iota
	EventKeyDown
	EventKeyEnter
	EventKeyOther
	EventChange
	EventReset
)

func (k EventKind) String() string {
	return [...]string{"up", "down", "enter", "key", "change", "reset"}[k]
}

// Action tells the search box what to do with an event.
type Action int

const (
	// ActionDelegate passes the event to the keyword engine's own handler.
	ActionDelegate Action = iota
	// ActionSuppress drops the event; no handler runs.
	ActionSuppress
	// ActionAskAgain sends the current query as a new question.
	ActionAskAgain
	// ActionSetQuery stores the new text without running a search.
	ActionSetQuery
	// ActionReset clears the shared query.
	ActionReset
)

func (a Action) String() string {
	return [...]string{"delegate", "suppress", "ask-again", "set-query", "reset"}[a]
}

type routeKey struct {
	mode Mode
	busy bool
	kind EventKind
}

var routes = map[routeKey]Action{
	{ModeKeywordSearch, false, EventKeyUp}:    ActionDelegate,
	{ModeKeywordSearch, false, EventKeyDown}:  ActionDelegate,
	{ModeKeywordSearch, false, EventKeyEnter}: ActionDelegate,
	{ModeKeywordSearch, false, EventKeyOther}: ActionDelegate,
	{ModeKeywordSearch, false, EventChange}:   ActionDelegate,
	{ModeKeywordSearch, false, EventReset}:    ActionReset,

	{ModeKeywordSearch, true, EventKeyUp}:    ActionDelegate,
	{ModeKeywordSearch, true, EventKeyDown}:  ActionDelegate,
	{ModeKeywordSearch, true, EventKeyEnter}: ActionDelegate,
	{ModeKeywordSearch, true, EventKeyOther}: ActionDelegate,
	{ModeKeywordSearch, true, EventChange}:   ActionDelegate,
	{ModeKeywordSearch, true, EventReset}:    ActionReset,

	{ModeAskAI, false, EventKeyUp}:    ActionSuppress,
	{ModeAskAI, false, EventKeyDown}:  ActionSuppress,
	{ModeAskAI, false, EventKeyEnter}: ActionAskAgain,
	{ModeAskAI, false, EventKeyOther}: ActionDelegate,
	{ModeAskAI, false, EventChange}:   ActionSetQuery,
	{ModeAskAI, false, EventReset}:    ActionReset,

	{ModeAskAI, true, EventKeyUp}:    ActionSuppress,
	{ModeAskAI, true, EventKeyDown}:  ActionSuppress,
	{ModeAskAI, true, EventKeyEnter}: ActionSuppress,
	{ModeAskAI, true, EventKeyOther}: ActionSuppress,
	{ModeAskAI, true, EventChange}:   ActionSuppress,
	{ModeAskAI, true, EventReset}:    ActionReset,
}

// Route looks up the action for an event in the given state. Enter with an
// empty query in ask-AI mode is suppressed rather than sent.
func Route(s State, kind EventKind) Action {
	action, ok := routes[routeKey{s.Mode, s.Busy, kind}]
	if !ok {
		return ActionSuppress
	}
	if action == ActionAskAgain && s.Query == "" {
		return ActionSuppress
	}
	return action
}

// classifyKey maps navigation keys to their event kind. Every other key is
// EventKeyOther until the text input shows whether it changed the value.
func classifyKey(msg tea.KeyMsg) EventKind {
	switch msg.Type {
	case tea.KeyUp:
		return EventKeyUp
	case tea.KeyDown:
		return EventKeyDown
	case tea.KeyEnter:
		return EventKeyEnter
	}
	return EventKeyOther
}
