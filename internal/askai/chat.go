package askai

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bunchhieng/docsearch/internal/objstore"
	tea "github.com/charmbracelet/bubbletea"
)

// MaxRecent is how many past questions are remembered.
const MaxRecent = 10

// Storage keys of the persisted chat state.
const (
	KVNamespace = "askai"
	HistoryKey  = "history"
	RecentKey   = "recent"
)

// Role of a chat message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the conversation.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// StartedMsg reports that the answerer accepted a question.
type StartedMsg struct {
	Turn   int
	stream <-chan Chunk
}

// ChunkMsg carries one streamed piece of the answer.
type ChunkMsg struct {
	Turn   int
	Text   string
	stream <-chan Chunk
}

// DoneMsg marks the end of an answer.
type DoneMsg struct {
	Turn int
}

// ErrorMsg reports a failed answer.
type ErrorMsg struct {
	Turn int
	Err  error
}

// ChatOption configures a Chat.
type ChatOption func(*Chat)

// WithHistory persists the conversation in store.
func WithHistory(store *objstore.Store[[]Message]) ChatOption {
	return func(c *Chat) { c.history = store }
}

// WithRecent persists asked questions in store.
func WithRecent(store *objstore.Store[[]string]) ChatOption {
	return func(c *Chat) { c.recent = store }
}

// Chat sequences questions and streamed answers. Like the search engine it
// is driven from a bubbletea Update loop.
type Chat struct {
	answerer Answerer
	history  *objstore.Store[[]Message]
	recent   *objstore.Store[[]string]

	status   Status
	messages []Message
	err      error
	turn     int
	cancel   context.CancelFunc
}

// NewChat returns a chat backed by answerer. A stored conversation is
// restored when a history store is configured.
func NewChat(answerer Answerer, opts ...ChatOption) *Chat {
	c := &Chat{answerer: answerer}
	for _, opt := range opts {
		opt(c)
	}
	if c.history != nil {
		if msgs, ok := c.history.GetItem(); ok {
			c.messages = msgs
		}
	}
	return c
}

// Status returns the status of the current answer.
func (c *Chat) Status() Status {
	return c.status
}

// Err returns the error of the last failed answer.
func (c *Chat) Err() error {
	return c.err
}

// Messages returns the conversation so far.
func (c *Chat) Messages() []Message {
	return c.messages
}

// LastAnswer returns the content of the latest assistant message.
func (c *Chat) LastAnswer() string {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == RoleAssistant {
			return c.messages[i].Content
		}
	}
	return ""
}

// LastQuestion returns the latest user message.
func (c *Chat) LastQuestion() string {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == RoleUser {
			return c.messages[i].Content
		}
	}
	return ""
}

// Recent returns remembered questions, most recent first.
func (c *Chat) Recent() []string {
	if c.recent == nil {
		return nil
	}
	q, _ := c.recent.GetItem()
	return q
}

// AskAgain sends question as a new turn. An answer still in flight is
// cancelled first.
func (c *Chat) AskAgain(question string) tea.Cmd {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil
	}
	c.Stop()

	c.turn++
	c.status = StatusSubmitted
	c.err = nil
	now := time.Now()
	c.messages = append(c.messages,
		Message{Role: RoleUser, Content: question, CreatedAt: now},
		Message{Role: RoleAssistant, CreatedAt: now},
	)
	c.remember(question)

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	turn, answerer := c.turn, c.answerer

	return func() tea.Msg {
		stream, err := answerer.Answer(ctx, question)
		if err != nil {
			return ErrorMsg{Turn: turn, Err: err}
		}
		return StartedMsg{Turn: turn, stream: stream}
	}
}

// Stop cancels the answer in flight, keeping what was streamed so far.
// Messages already queued for the stopped answer are dropped.
func (c *Chat) Stop() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.status.Busy() {
		c.turn++
		c.status = StatusReady
		c.persist()
	}
}

// Clear forgets the conversation.
func (c *Chat) Clear() {
	c.Stop()
	c.turn++
	c.messages = nil
	c.status = StatusIdle
	c.err = nil
	if c.history != nil {
		c.history.RemoveItem()
	}
}

// Update applies chat messages. Messages from an earlier turn are dropped.
func (c *Chat) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case StartedMsg:
		if msg.Turn != c.turn {
			return nil
		}
		return waitForChunk(msg.Turn, msg.stream)

	case ChunkMsg:
		if msg.Turn != c.turn {
			return nil
		}
		c.status = StatusStreaming
		if n := len(c.messages); n > 0 {
			c.messages[n-1].Content += msg.Text
		}
		return waitForChunk(msg.Turn, msg.stream)

	case DoneMsg:
		if msg.Turn != c.turn {
			return nil
		}
		c.status = StatusReady
		c.release()
		c.persist()

	case ErrorMsg:
		if msg.Turn != c.turn {
			return nil
		}
		slog.Warn("answer failed", "turn", msg.Turn, "error", msg.Err)
		c.status = StatusError
		c.err = msg.Err
		c.release()
		c.persist()
	}
	return nil
}

func waitForChunk(turn int, stream <-chan Chunk) tea.Cmd {
	return func() tea.Msg {
		chunk, ok := <-stream
		if !ok {
			return DoneMsg{Turn: turn}
		}
		if chunk.Err != nil {
			return ErrorMsg{Turn: turn, Err: chunk.Err}
		}
		return ChunkMsg{Turn: turn, Text: chunk.Text, stream: stream}
	}
}

func (c *Chat) release() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Chat) persist() {
	if c.history != nil {
		c.history.SetItem(c.messages)
	}
}

func (c *Chat) remember(question string) {
	if c.recent != nil {
		Remember(c.recent, question)
	}
}

// Remember moves question to the front of the recent questions in store,
// dropping duplicates and keeping at most MaxRecent.
func Remember(store *objstore.Store[[]string], question string) {
	prev, _ := store.GetItem()
	next := make([]string, 0, MaxRecent)
	next = append(next, question)
	for _, q := range prev {
		if q != question && len(next) < MaxRecent {
			next = append(next, q)
		}
	}
	store.SetItem(next)
}
