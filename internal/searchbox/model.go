package searchbox

import (
	"github.com/bunchhieng/docsearch/internal/askai"
	"github.com/bunchhieng/docsearch/internal/search"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// MaxQuerySize caps the length of the input text.
const MaxQuerySize = 64

// KeywordEngine is the keyword search collaborator. It owns the shared
// query text.
type KeywordEngine interface {
	State() search.State
	SetQuery(q string)
	HandleKey(msg tea.KeyMsg) tea.Cmd
	HandleChange(value string) tea.Cmd
	Reset() tea.Cmd
}

// AIEngine is the ask-AI collaborator.
type AIEngine interface {
	Status() askai.Status
	AskAgain(question string) tea.Cmd
}

// Props are supplied by the parent on every Update and View.
type Props struct {
	AskAIActive   bool
	Placeholder   string
	FromSelection bool
}

// CloseMsg asks the parent to close the search.
type CloseMsg struct{}

// AskAIToggleMsg asks the parent to switch ask-AI mode on or off.
type AskAIToggleMsg struct {
	Active bool
}

// KeyMap holds the search box's own bindings.
type KeyMap struct {
	Close       key.Binding
	ToggleAskAI key.Binding
	Reset       key.Binding
}

// DefaultKeyMap returns the default bindings with help text from tr.
func DefaultKeyMap(tr Translations) KeyMap {
	tr = tr.WithDefaults()
	return KeyMap{
		Close:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", tr.CloseButtonAriaLabel)),
		ToggleAskAI: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", tr.AskAIButtonText)),
		Reset:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", tr.ClearButtonAriaLabel)),
	}
}

// Option configures a Model.
type Option func(*Model)

// WithTranslations sets the user-facing strings.
func WithTranslations(tr Translations) Option {
	return func(m *Model) { m.tr = tr.WithDefaults() }
}

// WithAutoFocus focuses the input on mount.
func WithAutoFocus(on bool) Option {
	return func(m *Model) { m.focus.AutoFocus = on }
}

// WithKeyMap overrides DefaultKeyMap.
func WithKeyMap(km KeyMap) Option {
	return func(m *Model) { m.keys = km; m.customKeys = true }
}

// Model is the search box component.
type Model struct {
	keyword KeywordEngine
	ai      AIEngine

	tr         Translations
	keys       KeyMap
	customKeys bool
	input      textinput.Model
	focus      FocusPolicy
	selectAll  bool
	width      int
}

// New returns a search box wired to the two engines.
func New(kw KeywordEngine, ai AIEngine, opts ...Option) Model {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = MaxQuerySize

	m := Model{
		keyword: kw,
		ai:      ai,
		tr:      DefaultTranslations(),
		input:   in,
		width:   80,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if !m.customKeys {
		m.keys = DefaultKeyMap(m.tr)
	}
	m.input.Width = m.inputWidth()
	return m
}

// State derives the input state for p.
func (m Model) State(p Props) State {
	return Derive(p.AskAIActive, m.ai.Status(), m.keyword.State())
}

// Placeholder returns the placeholder shown for p.
func (m Model) Placeholder(p Props) string {
	if m.State(p).Busy {
		return m.tr.PlaceholderTextAskAIStreaming
	}
	return p.Placeholder
}

// Value returns the text in the input.
func (m Model) Value() string {
	return m.input.Value()
}

// Focused reports whether the input has keyboard focus.
func (m Model) Focused() bool {
	return m.input.Focused()
}

// Selected reports whether the whole input text is selected.
func (m Model) Selected() bool {
	return m.selectAll
}

// KeyMap returns the active bindings.
func (m Model) KeyMap() KeyMap {
	return m.keys
}

// Focus gives the input keyboard focus unless it is disabled.
func (m Model) Focus(p Props) (Model, tea.Cmd) {
	if m.State(p).Disabled() {
		return m, nil
	}
	return m, m.input.Focus()
}

// Blur removes keyboard focus from the input.
func (m Model) Blur() Model {
	m.input.Blur()
	m.selectAll = false
	return m
}

// SetWidth sets the rendered width.
func (m Model) SetWidth(w int) Model {
	m.width = w
	m.input.Width = m.inputWidth()
	return m
}

func (m Model) inputWidth() int {
	// icon, padding, border and the action column.
	w := m.width - 30
	if w < 10 {
		w = 10
	}
	return w
}

// Update handles msg given the parent's current props.
func (m Model) Update(msg tea.Msg, p Props) (Model, tea.Cmd) {
	m, focusCmd := m.observe(p)

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.SetWidth(msg.Width)
	case tea.KeyMsg:
		m, cmd = m.handleKey(msg, p)
	default:
		m.input, cmd = m.input.Update(msg)
	}
	return m, tea.Batch(focusCmd, cmd)
}

// observe syncs the input with the derived state and applies the focus
// rules for the current signals.
func (m Model) observe(p Props) (Model, tea.Cmd) {
	st := m.State(p)

	// The engine may hold a longer query than the input accepts, such as a
	// recalled question. Write the clamped text back so both agree.
	if q := clampQuery(st.Query); q != st.Query {
		m.keyword.SetQuery(q)
		st.Query = q
	}
	if m.input.Value() != st.Query {
		m.input.SetValue(st.Query)
		m.input.CursorEnd()
	}

	var cmds []tea.Cmd
	for _, action := range m.focus.Observe(Signals{FromSelection: p.FromSelection, AIStatus: st.AIStatus}) {
		if st.Disabled() {
			continue
		}
		switch action {
		case FocusInput:
			cmds = append(cmds, m.input.Focus())
		case SelectAll:
			cmds = append(cmds, m.input.Focus())
			m.input.CursorEnd()
			m.selectAll = true
		}
	}

	if st.Disabled() && m.input.Focused() {
		m.input.Blur()
		m.selectAll = false
	}
	return m, tea.Batch(cmds...)
}

func clampQuery(q string) string {
	r := []rune(q)
	if len(r) <= MaxQuerySize {
		return q
	}
	return string(r[:MaxQuerySize])
}

func (m Model) handleKey(msg tea.KeyMsg, p Props) (Model, tea.Cmd) {
	st := m.State(p)

	var kind EventKind
	switch {
	case key.Matches(msg, m.keys.Close):
		return m, func() tea.Msg { return CloseMsg{} }
	case key.Matches(msg, m.keys.ToggleAskAI):
		active := !st.AskAIActive()
		return m, func() tea.Msg { return AskAIToggleMsg{Active: active} }
	case key.Matches(msg, m.keys.Reset):
		kind = EventReset
	default:
		kind = classifyKey(msg)
	}

	var next textinput.Model
	var inputCmd tea.Cmd
	if kind == EventKeyOther {
		next, inputCmd = m.applyInput(msg)
		if next.Value() != m.input.Value() {
			kind = EventChange
		}
	}

	wasSelected := m.selectAll
	m.selectAll = false

	switch Route(st, kind) {
	case ActionAskAgain:
		return m, m.ai.AskAgain(st.Query)

	case ActionSetQuery:
		m.input = next
		m.keyword.SetQuery(next.Value())
		return m, inputCmd

	case ActionReset:
		m.input.SetValue("")
		return m, m.keyword.Reset()

	case ActionDelegate:
		switch kind {
		case EventChange:
			m.input = next
			return m, tea.Batch(inputCmd, m.keyword.HandleChange(next.Value()))
		case EventKeyOther:
			m.input = next
			return m, tea.Batch(inputCmd, m.keyword.HandleKey(msg))
		default:
			return m, m.keyword.HandleKey(msg)
		}

	default:
		m.selectAll = wasSelected
		return m, nil
	}
}

// applyInput runs msg through a copy of the text input. While the text is
// selected, typing replaces it and deleting clears it.
func (m Model) applyInput(msg tea.KeyMsg) (textinput.Model, tea.Cmd) {
	in := m.input
	if m.selectAll && in.Focused() {
		switch msg.Type {
		case tea.KeyRunes, tea.KeySpace:
			in.SetValue(string(msg.Runes))
			in.CursorEnd()
			return in, nil
		case tea.KeyBackspace, tea.KeyDelete:
			in.SetValue("")
			return in, nil
		}
	}
	return in.Update(msg)
}
