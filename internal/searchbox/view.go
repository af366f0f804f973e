package searchbox

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	boxDisabledStyle = boxStyle.
				BorderForeground(lipgloss.Color("241"))

	iconStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	sparkleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("213")).
			Bold(true)

	selectedTextStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("62")).
				Foreground(lipgloss.Color("230"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)
)

// View renders the search box for p.
func (m Model) View(p Props) string {
	st := m.State(p)

	var icon string
	switch {
	case st.AskAIActive():
		icon = iconStyle.Render("←")
	case st.Loading:
		icon = loadingStyle.Render("◌")
	default:
		icon = iconStyle.Render("⌕")
	}

	in := m.input
	in.Placeholder = m.Placeholder(p)
	field := in.View()
	if m.selectAll && in.Value() != "" {
		field = selectedTextStyle.Render(in.Value())
	}

	var actions []string
	if st.Busy {
		actions = append(actions, sparkleStyle.Render("✦"))
	}
	if st.Query != "" {
		actions = append(actions, actionStyle.Render(m.keys.Reset.Help().Key+" "+m.tr.ClearButtonTitle))
	}
	if st.Busy || st.Query != "" {
		actions = append(actions, actionStyle.Render("│"))
	}
	actions = append(actions, actionStyle.Render(m.keys.Close.Help().Key+" "+m.tr.CloseButtonText))

	line := lipgloss.JoinHorizontal(lipgloss.Center,
		icon, " ", field, "  ", strings.Join(actions, " "))

	style := boxStyle
	if st.Disabled() {
		style = boxDisabledStyle
	}
	box := style.Width(m.width - 2).Render(line)

	return lipgloss.JoinVertical(lipgloss.Left, box, hintStyle.Render(m.hint(st)))
}

func (m Model) hint(st State) string {
	toggle := m.tr.AskAIButtonText
	if st.AskAIActive() {
		toggle = m.tr.BackToKeywordSearchButtonText
	}
	return "↵ " + m.tr.enterLabel(st.EnterKeyHint()) + " · " + m.keys.ToggleAskAI.Help().Key + " " + toggle
}
