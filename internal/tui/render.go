package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/bunchhieng/docsearch/internal/askai"
	"github.com/bunchhieng/docsearch/internal/model"
	"github.com/bunchhieng/docsearch/internal/search"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("213"))

	bodyStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

func (m appModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress ctrl+c to quit.", m.err)
	}

	var b strings.Builder

	b.WriteString(m.box.View(m.props()))
	b.WriteString("\n")

	var body string
	if m.askAI {
		body = m.renderAnswer()
	} else {
		body = m.renderHits()
	}
	b.WriteString(bodyStyle.Height(max(m.bodyHeight(), 1)).Render(body))
	b.WriteString("\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.help.View(helpKeys{
		app:   m.keys,
		box:   m.box.KeyMap(),
		askAI: m.askAI,
		busy:  m.chat.Status().Busy(),
	}))

	return b.String()
}

func (m appModel) renderHits() string {
	st := m.keyword.State()

	if st.Query == "" {
		return m.renderRecentDocs()
	}
	if st.Status == search.StatusError {
		return errorStyle.Render(fmt.Sprintf("Search failed: %v", st.Err))
	}
	if len(st.Hits) == 0 {
		if st.Status == search.StatusIdle {
			return dimStyle.Render(fmt.Sprintf("No results for %q. Press tab to ask AI instead.", st.Query))
		}
		return dimStyle.Render("Searching...")
	}

	var b strings.Builder
	limit := m.bodyHeight() / 2
	for i, doc := range st.Hits {
		if limit > 0 && i >= limit {
			break
		}
		b.WriteString(m.renderDoc(doc, i == st.Active))
		b.WriteString("\n")
	}
	return b.String()
}

func (m appModel) renderRecentDocs() string {
	if len(m.docs) == 0 {
		return dimStyle.Render("No documents yet. Add one with 'docsearch add <url>'.")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Recently added"))
	b.WriteString("\n")
	for _, doc := range m.docs {
		b.WriteString(" ")
		b.WriteString(urlStyle.Render(truncate(doc.DisplayTitle(), 60)))
		b.WriteString(" ")
		b.WriteString(dimStyle.Render(formatTime(doc.CreatedAt)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m appModel) renderDoc(doc *model.Document, selected bool) string {
	title := truncate(doc.DisplayTitle(), 60)

	tagsStr := ""
	if doc.Tags != "" {
		tagsStr = fmt.Sprintf(" [%s]", doc.Tags)
	}

	line := fmt.Sprintf("%s%s\n  %s",
		titleStyle.Render(title),
		tagStyle.Render(tagsStr),
		dimStyle.Render(truncate(doc.URL, m.width-8)),
	)

	if selected {
		return selectedStyle.Render("› " + line)
	}
	return "  " + line
}

func (m appModel) renderAnswer() string {
	question := m.chat.LastQuestion()
	if question == "" {
		return m.renderRecentQuestions()
	}

	var b strings.Builder
	header := headerStyle.Render("Q: " + truncate(question, m.width-8))
	switch m.chat.Status() {
	case askai.StatusSubmitted, askai.StatusStreaming:
		header += " " + m.spinner.View()
	case askai.StatusError:
		header += " " + errorStyle.Render("failed")
	}
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.answer.View())

	if len(m.links) > 0 {
		b.WriteString("\n")
		for i, link := range m.links {
			if i >= 9 {
				break
			}
			b.WriteString(dimStyle.Render(fmt.Sprintf(" %d ", i+1)))
			b.WriteString(urlStyle.Render(truncate(link.Label(), m.width-8)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m appModel) renderRecentQuestions() string {
	recent := m.chat.Recent()
	if len(recent) == 0 {
		return dimStyle.Render("Ask a question about your documents and press enter.")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Recent questions"))
	b.WriteString("\n")
	for i, q := range recent {
		if i == m.recentIdx {
			b.WriteString(selectedStyle.Render("› " + q))
		} else {
			b.WriteString("  " + q)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m appModel) renderStatusBar() string {
	var parts []string

	if m.statusMsg != "" {
		parts = append(parts, m.statusMsg)
	} else if m.askAI {
		parts = append(parts, fmt.Sprintf("Ask AI: %s", m.chat.Status()))
	} else {
		st := m.keyword.State()
		if len(st.Hits) > 0 {
			parts = append(parts, fmt.Sprintf("%d/%d", st.Active+1, len(st.Hits)))
		} else {
			parts = append(parts, "Keyword search")
		}
	}

	return statusBarStyle.Width(m.width).Render(strings.Join(parts, "  |  "))
}

func truncate(s string, n int) string {
	if n < 4 {
		n = 4
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
