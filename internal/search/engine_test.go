package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bunchhieng/docsearch/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

type fakeSearcher struct {
	hits    map[string][]*model.Document
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, q string) ([]*model.Document, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.hits[q], nil
}

// runCmd executes cmd and any batched commands, returning every message.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmd(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func docs(titles ...string) []*model.Document {
	out := make([]*model.Document, len(titles))
	for i, t := range titles {
		out[i] = &model.Document{ID: t, URL: "https://example.com/" + t, Title: t}
	}
	return out
}

func TestHandleChangeRunsSearch(t *testing.T) {
	s := &fakeSearcher{hits: map[string][]*model.Document{"go": docs("a", "b")}}
	e := New(s, WithStallThreshold(time.Millisecond))

	cmd := e.HandleChange("go")
	if e.State().Status != StatusLoading {
		t.Fatalf("Expected loading, got %s", e.State().Status)
	}

	for _, msg := range runCmd(cmd) {
		e.Update(msg)
	}

	st := e.State()
	if st.Status != StatusIdle {
		t.Errorf("Expected idle after results, got %s", st.Status)
	}
	if len(st.Hits) != 2 {
		t.Errorf("Expected 2 hits, got %d", len(st.Hits))
	}
	if len(s.queries) != 1 || s.queries[0] != "go" {
		t.Errorf("Expected one search for 'go', got %v", s.queries)
	}
}

func TestSetQueryDoesNotSearch(t *testing.T) {
	s := &fakeSearcher{}
	e := New(s)

	e.SetQuery("how do I search?")

	if e.State().Query != "how do I search?" {
		t.Errorf("Expected query set, got %q", e.State().Query)
	}
	if e.State().Status != StatusIdle {
		t.Errorf("Expected idle status, got %s", e.State().Status)
	}
	if len(s.queries) != 0 {
		t.Errorf("Expected no searches, got %v", s.queries)
	}
}

func TestEmptyQueryClearsHits(t *testing.T) {
	s := &fakeSearcher{hits: map[string][]*model.Document{"go": docs("a")}}
	e := New(s)
	for _, msg := range runCmd(e.HandleChange("go")) {
		e.Update(msg)
	}

	if cmd := e.HandleChange(""); cmd != nil {
		t.Error("Expected no command for empty query")
	}
	if len(e.State().Hits) != 0 {
		t.Errorf("Expected hits cleared, got %d", len(e.State().Hits))
	}
}

func TestStaleResultsDropped(t *testing.T) {
	e := New(&fakeSearcher{})

	e.HandleChange("g")
	e.HandleChange("go")

	e.Update(ResultsMsg{Seq: 1, Query: "g", Hits: docs("stale")})
	if len(e.State().Hits) != 0 {
		t.Fatal("Expected stale results to be ignored")
	}

	e.Update(ResultsMsg{Seq: 2, Query: "go", Hits: docs("fresh")})
	if hit := e.State().ActiveHit(); hit == nil || hit.Title != "fresh" {
		t.Errorf("Expected fresh hit, got %v", hit)
	}
}

func TestStall(t *testing.T) {
	e := New(&fakeSearcher{})
	e.HandleChange("go")

	e.Update(StallMsg{Seq: 0})
	if e.State().Status != StatusLoading {
		t.Errorf("Expected old stall ignored, got %s", e.State().Status)
	}

	e.Update(StallMsg{Seq: 1})
	if e.State().Status != StatusStalled {
		t.Errorf("Expected stalled, got %s", e.State().Status)
	}

	e.Update(ResultsMsg{Seq: 1, Query: "go"})
	if e.State().Status != StatusIdle {
		t.Errorf("Expected idle after results, got %s", e.State().Status)
	}

	// A stall arriving after the results does not flip the status back.
	e.Update(StallMsg{Seq: 1})
	if e.State().Status != StatusIdle {
		t.Errorf("Expected idle, got %s", e.State().Status)
	}
}

func TestSearchError(t *testing.T) {
	boom := errors.New("boom")
	e := New(&fakeSearcher{err: boom}, WithStallThreshold(time.Millisecond))

	for _, msg := range runCmd(e.HandleChange("go")) {
		e.Update(msg)
	}

	if e.State().Status != StatusError || !errors.Is(e.State().Err, boom) {
		t.Errorf("Expected error status, got %s (%v)", e.State().Status, e.State().Err)
	}
}

func TestHandleKeyNavigation(t *testing.T) {
	e := New(&fakeSearcher{})
	e.HandleChange("q")
	e.Update(ResultsMsg{Seq: 1, Query: "q", Hits: docs("a", "b", "c")})

	down := tea.KeyMsg{Type: tea.KeyDown}
	up := tea.KeyMsg{Type: tea.KeyUp}

	e.HandleKey(down)
	e.HandleKey(down)
	if e.State().Active != 2 {
		t.Errorf("Expected active 2, got %d", e.State().Active)
	}
	e.HandleKey(down)
	if e.State().Active != 0 {
		t.Errorf("Expected wraparound to 0, got %d", e.State().Active)
	}
	e.HandleKey(up)
	if e.State().Active != 2 {
		t.Errorf("Expected wraparound to 2, got %d", e.State().Active)
	}

	msgs := runCmd(e.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}))
	if len(msgs) != 1 {
		t.Fatalf("Expected one message, got %v", msgs)
	}
	sel, ok := msgs[0].(SelectMsg)
	if !ok || sel.Doc.Title != "c" {
		t.Errorf("Expected SelectMsg for c, got %#v", msgs[0])
	}
}

func TestHandleKeyWithoutHits(t *testing.T) {
	e := New(&fakeSearcher{})
	if cmd := e.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("Expected no command without hits")
	}
	e.HandleKey(tea.KeyMsg{Type: tea.KeyDown})
	if e.State().Active != 0 {
		t.Errorf("Expected active 0, got %d", e.State().Active)
	}
}

func TestReset(t *testing.T) {
	e := New(&fakeSearcher{})
	e.HandleChange("go")
	e.Reset()

	if e.State().Query != "" || e.State().Status != StatusIdle {
		t.Errorf("Expected cleared state, got %+v", e.State())
	}

	// Results for the request issued before Reset are dropped.
	e.Update(ResultsMsg{Seq: 1, Query: "go", Hits: docs("a")})
	if len(e.State().Hits) != 0 {
		t.Error("Expected results after reset to be dropped")
	}
}
