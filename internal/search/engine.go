// Package search is the keyword search engine behind the search box:
// it owns the query, runs searches as the user types and tracks which hit
// is active.
package search

import (
	"context"
	"time"

	"github.com/bunchhieng/docsearch/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultStallThreshold is how long a search may run before it is
// reported as stalled.
const DefaultStallThreshold = 300 * time.Millisecond

// Status of the keyword search.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusStalled
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusStalled:
		return "stalled"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Searcher runs a full-text query over the corpus.
type Searcher interface {
	Search(ctx context.Context, query string) ([]*model.Document, error)
}

// State is a snapshot of the engine.
type State struct {
	Query  string
	Status Status
	Hits   []*model.Document
	Active int
	Err    error
}

// ActiveHit returns the highlighted hit, or nil.
func (s State) ActiveHit() *model.Document {
	if s.Active < 0 || s.Active >= len(s.Hits) {
		return nil
	}
	return s.Hits[s.Active]
}

// ResultsMsg carries the outcome of one search request.
type ResultsMsg struct {
	Seq   int
	Query string
	Hits  []*model.Document
	Err   error
}

// StallMsg fires when a request has been pending for the stall threshold.
type StallMsg struct {
	Seq int
}

// SelectMsg is emitted when the user picks the active hit.
type SelectMsg struct {
	Doc *model.Document
}

// Option configures an Engine.
type Option func(*Engine)

// WithStallThreshold overrides DefaultStallThreshold.
func WithStallThreshold(d time.Duration) Option {
	return func(e *Engine) { e.stallThreshold = d }
}

// WithTimeout bounds every search request.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// Engine is a search-as-you-type engine. It is driven from a bubbletea
// Update loop and is not safe for concurrent use.
type Engine struct {
	searcher       Searcher
	stallThreshold time.Duration
	timeout        time.Duration

	state State
	seq   int
}

// New returns an engine backed by searcher.
func New(searcher Searcher, opts ...Option) *Engine {
	e := &Engine{
		searcher:       searcher,
		stallThreshold: DefaultStallThreshold,
		timeout:        5 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current snapshot.
func (e *Engine) State() State {
	return e.state
}

// SetQuery replaces the query text without running a search.
func (e *Engine) SetQuery(q string) {
	e.state.Query = q
}

// HandleChange is the default change handler: it updates the query and
// runs a search for it.
func (e *Engine) HandleChange(value string) tea.Cmd {
	e.state.Query = value
	return e.refresh()
}

// Refresh runs a search for the current query.
func (e *Engine) Refresh() tea.Cmd {
	return e.refresh()
}

func (e *Engine) refresh() tea.Cmd {
	e.seq++
	if e.state.Query == "" {
		e.state.Hits = nil
		e.state.Active = 0
		e.state.Status = StatusIdle
		e.state.Err = nil
		return nil
	}

	e.state.Status = StatusLoading
	seq, query := e.seq, e.state.Query
	searcher, timeout := e.searcher, e.timeout

	run := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		hits, err := searcher.Search(ctx, query)
		return ResultsMsg{Seq: seq, Query: query, Hits: hits, Err: err}
	}
	stall := tea.Tick(e.stallThreshold, func(time.Time) tea.Msg {
		return StallMsg{Seq: seq}
	})
	return tea.Batch(run, stall)
}

// Update applies engine messages. Results of superseded requests are dropped.
func (e *Engine) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ResultsMsg:
		if msg.Seq != e.seq {
			return nil
		}
		if msg.Err != nil {
			e.state.Status = StatusError
			e.state.Err = msg.Err
			return nil
		}
		e.state.Hits = msg.Hits
		e.state.Active = 0
		e.state.Status = StatusIdle
		e.state.Err = nil

	case StallMsg:
		if msg.Seq == e.seq && e.state.Status == StatusLoading {
			e.state.Status = StatusStalled
		}
	}
	return nil
}

// HandleKey is the default keyboard handler: up and down move the active
// hit with wraparound, enter selects it.
func (e *Engine) HandleKey(msg tea.KeyMsg) tea.Cmd {
	n := len(e.state.Hits)
	switch msg.String() {
	case "up", "ctrl+p":
		if n > 0 {
			e.state.Active = (e.state.Active - 1 + n) % n
		}
	case "down", "ctrl+n":
		if n > 0 {
			e.state.Active = (e.state.Active + 1) % n
		}
	case "enter":
		if hit := e.state.ActiveHit(); hit != nil {
			return func() tea.Msg { return SelectMsg{Doc: hit} }
		}
	}
	return nil
}

// Reset clears the query, the hits and any pending request.
func (e *Engine) Reset() tea.Cmd {
	e.seq++
	e.state = State{}
	return nil
}
