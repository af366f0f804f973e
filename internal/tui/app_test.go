package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bunchhieng/docsearch/internal/askai"
	"github.com/bunchhieng/docsearch/internal/model"
	"github.com/bunchhieng/docsearch/internal/search"
	"github.com/bunchhieng/docsearch/internal/searchbox"
	"github.com/bunchhieng/docsearch/internal/storage"
	tea "github.com/charmbracelet/bubbletea"
)

func setupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	s, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	docs := []*model.Document{
		{URL: "https://sqlite.org/fts5.html", Title: "SQLite FTS5", Content: "Full-text search extension for SQLite.", Tags: "db,search"},
		{URL: "https://go.dev/doc/effective_go", Title: "Effective Go", Content: "Tips for writing clear, idiomatic Go code.", Tags: "go"},
	}
	for _, d := range docs {
		if _, err := s.Add(context.Background(), d); err != nil {
			t.Fatalf("Add %s failed: %v", d.URL, err)
		}
	}
	return s
}

func newTestModel(t *testing.T) (appModel, *[]string) {
	t.Helper()
	m := initialModel(setupTestDB(t), Options{
		AutoFocus:      true,
		StallThreshold: time.Millisecond,
	})
	opened := &[]string{}
	m.open = func(url string) error {
		*opened = append(*opened, url)
		return nil
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(appModel), opened
}

// run executes cmd and returns its messages, expanding batches. Commands
// that block, such as cursor blinks and timers, are abandoned.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, run(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// pump feeds the messages produced by cmd back into m until it settles.
func pump(t *testing.T, m appModel, cmd tea.Cmd) (appModel, []tea.Msg) {
	t.Helper()
	var seen []tea.Msg
	queue := run(cmd)
	for i := 0; len(queue) > 0; i++ {
		if i > 500 {
			t.Fatal("Messages did not settle")
		}
		msg := queue[0]
		queue = queue[1:]
		seen = append(seen, msg)

		switch msg.(type) {
		case search.ResultsMsg, search.StallMsg, search.SelectMsg,
			askai.StartedMsg, askai.ChunkMsg, askai.DoneMsg, askai.ErrorMsg,
			searchbox.CloseMsg, searchbox.AskAIToggleMsg, statusMsg, loadDocsMsg:
			next, c := m.Update(msg)
			m = next.(appModel)
			queue = append(queue, run(c)...)
		}
	}
	return m, seen
}

func press(t *testing.T, m appModel, msg tea.KeyMsg) (appModel, []tea.Msg) {
	t.Helper()
	next, cmd := m.Update(msg)
	return pump(t, next.(appModel), cmd)
}

func typeText(t *testing.T, m appModel, text string) appModel {
	t.Helper()
	for _, r := range text {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestInitLoadsDocuments(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = pump(t, m, loadDocs(m.storage))

	if len(m.docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(m.docs))
	}
	if !strings.Contains(m.View(), "Recently added") {
		t.Errorf("Expected recent documents in view:\n%s", m.View())
	}
}

func TestKeywordSearchAndOpen(t *testing.T) {
	m, opened := newTestModel(t)

	m = typeText(t, m, "sqlite")
	st := m.keyword.State()
	if st.Query != "sqlite" {
		t.Fatalf("Expected query 'sqlite', got %q", st.Query)
	}
	if len(st.Hits) != 1 || st.Hits[0].Title != "SQLite FTS5" {
		t.Fatalf("Expected one SQLite hit, got %v", st.Hits)
	}
	if !strings.Contains(m.View(), "SQLite FTS5") {
		t.Errorf("Expected hit in view:\n%s", m.View())
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(*opened) != 1 || (*opened)[0] != "https://sqlite.org/fts5.html" {
		t.Errorf("Expected hit opened, got %v", *opened)
	}
	if !strings.HasPrefix(m.statusMsg, "Opened:") {
		t.Errorf("Expected status message, got %q", m.statusMsg)
	}
}

func TestAskAIFlow(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if !m.askAI {
		t.Fatal("Expected ask-AI mode after tab")
	}

	m = typeText(t, m, "sqlite search")
	if st := m.keyword.State(); st.Query != "sqlite search" || len(st.Hits) != 0 {
		t.Fatalf("Expected query stored without searching, got %q with %d hits", st.Query, len(st.Hits))
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.chat.Status() != askai.StatusReady {
		t.Fatalf("Expected ready status, got %v", m.chat.Status())
	}
	if m.chat.LastQuestion() != "sqlite search" {
		t.Errorf("Expected question recorded, got %q", m.chat.LastQuestion())
	}
	if len(m.links) == 0 || m.links[0].URL != "https://sqlite.org/fts5.html" {
		t.Errorf("Expected cited link extracted, got %v", m.links)
	}
	if !m.box.Focused() {
		t.Error("Expected input refocused after the answer")
	}
	if !strings.Contains(m.View(), "Q: sqlite search") {
		t.Errorf("Expected question header in view:\n%s", m.View())
	}
}

func TestOpenExtractedLink(t *testing.T) {
	m, opened := newTestModel(t)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "sqlite")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}, Alt: true})
	if len(*opened) != 1 || (*opened)[0] != m.links[0].URL {
		t.Errorf("Expected first link opened, got %v", *opened)
	}
	if m.keyword.State().Query != "sqlite" {
		t.Errorf("Expected query untouched, got %q", m.keyword.State().Query)
	}
}

func TestBusyInputAndStop(t *testing.T) {
	m, _ := newTestModel(t)
	m.chat = askai.NewChat(askai.NewLocalAnswerer(m.storage, time.Hour))
	m.box = searchbox.New(m.keyword, m.chat, searchbox.WithAutoFocus(true))
	m.box, _ = m.box.Update(nil, m.props())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "go")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(appModel)
	if !m.chat.Status().Busy() {
		t.Fatalf("Expected busy status, got %v", m.chat.Status())
	}
	if m.box.Focused() {
		t.Error("Expected input disabled while busy")
	}

	m = typeText(t, m, "x")
	if m.keyword.State().Query != "go" {
		t.Errorf("Expected query unchanged while busy, got %q", m.keyword.State().Query)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	m = next.(appModel)
	if m.chat.Status() != askai.StatusReady {
		t.Errorf("Expected ready after stop, got %v", m.chat.Status())
	}
	if !m.box.Focused() {
		t.Error("Expected input refocused after stop")
	}
}

func TestRecentQuestionSelection(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "sqlite")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	m = typeText(t, m, "idiomatic go")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if got := m.chat.Recent(); len(got) != 2 || got[0] != "idiomatic go" {
		t.Fatalf("Expected two recent questions, got %v", got)
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	if m.keyword.State().Query != "idiomatic go" || !m.box.Selected() {
		t.Fatalf("Expected newest question selected, got %q selected=%v", m.keyword.State().Query, m.box.Selected())
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	if m.keyword.State().Query != "sqlite" || !m.box.Selected() {
		t.Fatalf("Expected older question selected, got %q selected=%v", m.keyword.State().Query, m.box.Selected())
	}

	m = typeText(t, m, "w")
	if m.keyword.State().Query != "w" {
		t.Errorf("Expected typing to replace the selection, got %q", m.keyword.State().Query)
	}
}

func TestEscQuits(t *testing.T) {
	m, _ := newTestModel(t)

	_, seen := press(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	var quit bool
	for _, msg := range seen {
		if _, ok := msg.(tea.QuitMsg); ok {
			quit = true
		}
	}
	if !quit {
		t.Errorf("Expected quit, got %v", seen)
	}
}

func TestToggleBackRunsSearch(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "go")
	if len(m.keyword.State().Hits) != 0 {
		t.Fatal("Expected no search in ask-AI mode")
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.askAI {
		t.Fatal("Expected keyword mode after second tab")
	}
	if len(m.keyword.State().Hits) == 0 {
		t.Error("Expected the stored query to be searched")
	}
}
