// Package tui is the interactive docsearch terminal UI.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"time"

	"github.com/bunchhieng/docsearch/internal/askai"
	"github.com/bunchhieng/docsearch/internal/linkify"
	"github.com/bunchhieng/docsearch/internal/model"
	"github.com/bunchhieng/docsearch/internal/objstore"
	"github.com/bunchhieng/docsearch/internal/search"
	"github.com/bunchhieng/docsearch/internal/searchbox"
	"github.com/bunchhieng/docsearch/internal/storage"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	statusTimeout = 3 * time.Second
	recentDocs    = 10
)

// Options configures the TUI.
type Options struct {
	AutoFocus        bool
	StallThreshold   time.Duration
	AnswerDelay      time.Duration
	Placeholder      string
	PlaceholderAskAI string
	Translations     searchbox.Translations
}

type appModel struct {
	storage storage.Storage
	keyword *search.Engine
	chat    *askai.Chat
	box     searchbox.Model
	keys    keyMap
	help    help.Model
	answer  viewport.Model
	spinner spinner.Model
	open    func(url string) error

	placeholder      string
	placeholderAskAI string

	askAI         bool
	fromSelection bool
	recentIdx     int
	links         []model.LinkRecord
	docs          []*model.Document
	initCmd       tea.Cmd

	width     int
	height    int
	err       error
	statusMsg string
	statusSeq int
}

type loadDocsMsg struct {
	docs []*model.Document
	err  error
}

type statusMsg struct {
	message string
}

type clearStatusMsg struct {
	seq int
}

func initialModel(s storage.Storage, opts Options) appModel {
	tr := opts.Translations.WithDefaults()
	if opts.Placeholder == "" {
		opts.Placeholder = tr.PlaceholderText
	}
	if opts.PlaceholderAskAI == "" {
		opts.PlaceholderAskAI = tr.PlaceholderTextAskAI
	}

	var searchOpts []search.Option
	if opts.StallThreshold > 0 {
		searchOpts = append(searchOpts, search.WithStallThreshold(opts.StallThreshold))
	}
	keyword := search.New(s, searchOpts...)

	kv := s.KV(askai.KVNamespace)
	onErr := objstore.WithErrorHandler(func(op string, err error) {
		slog.Warn("chat store failed", "op", op, "error", err)
	})
	chat := askai.NewChat(
		askai.NewLocalAnswerer(s, opts.AnswerDelay),
		askai.WithHistory(objstore.New[[]askai.Message](kv, askai.HistoryKey, onErr)),
		askai.WithRecent(objstore.New[[]string](kv, askai.RecentKey, onErr)),
	)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	m := appModel{
		storage:          s,
		keyword:          keyword,
		chat:             chat,
		box:              searchbox.New(keyword, chat, searchbox.WithTranslations(tr), searchbox.WithAutoFocus(opts.AutoFocus)),
		keys:             defaultKeyMap(),
		help:             help.New(),
		answer:           viewport.New(80, 10),
		spinner:          sp,
		open:             openInBrowser,
		placeholder:      opts.Placeholder,
		placeholderAskAI: opts.PlaceholderAskAI,
		recentIdx:        -1,
		width:            80,
		height:           24,
	}
	m.box, m.initCmd = m.box.Update(nil, m.props())
	m.refreshAnswer()
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(
		m.initCmd,
		loadDocs(m.storage),
		m.spinner.Tick,
	)
}

// props are the search box props for the current mode.
func (m appModel) props() searchbox.Props {
	placeholder := m.placeholder
	if m.askAI {
		placeholder = m.placeholderAskAI
	}
	return searchbox.Props{
		AskAIActive:   m.askAI,
		Placeholder:   placeholder,
		FromSelection: m.fromSelection,
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeAnswer()
		m.refreshAnswer()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case search.ResultsMsg, search.StallMsg:
		cmds = append(cmds, m.keyword.Update(msg))

	case search.SelectMsg:
		return m, m.openURL(msg.Doc.URL)

	case askai.StartedMsg, askai.ChunkMsg, askai.DoneMsg, askai.ErrorMsg:
		cmds = append(cmds, m.chat.Update(msg))
		m.refreshAnswer()

	case searchbox.CloseMsg:
		m.chat.Stop()
		return m, tea.Quit

	case searchbox.AskAIToggleMsg:
		m.askAI = msg.Active
		m.recentIdx = -1
		m.fromSelection = false
		slog.Debug("search mode changed", "ask_ai", m.askAI)
		if !m.askAI {
			// The query may have been edited without searching.
			cmds = append(cmds, m.keyword.Refresh())
		}

	case loadDocsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.docs = msg.docs

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusMsg:
		m.statusMsg = msg.message
		m.statusSeq++
		seq := m.statusSeq
		cmds = append(cmds, tea.Tick(statusTimeout, func(time.Time) tea.Msg {
			return clearStatusMsg{seq: seq}
		}))

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.statusMsg = ""
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.box, cmd = m.box.Update(msg, m.props())
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.chat.Stop()
		return m, tea.Quit
	}

	if m.askAI {
		busy := m.chat.Status().Busy()
		switch {
		case key.Matches(msg, m.keys.PrevRecent):
			return m.pickRecent(-1)
		case key.Matches(msg, m.keys.NextRecent):
			return m.pickRecent(1)
		case key.Matches(msg, m.keys.OpenLink):
			return m, m.openLink(int(msg.Runes[0] - '1'))
		case key.Matches(msg, m.keys.ScrollUp, m.keys.ScrollDown):
			var cmd tea.Cmd
			m.answer, cmd = m.answer.Update(msg)
			return m, cmd
		case key.Matches(msg, m.keys.Stop) && busy:
			m.chat.Stop()
			m.refreshAnswer()
			return m.observe()
		case key.Matches(msg, m.keys.ClearChat) && !busy:
			m.chat.Clear()
			m.recentIdx = -1
			m.refreshAnswer()
			return m, func() tea.Msg { return statusMsg{"Conversation cleared"} }
		}
	}

	m.fromSelection = false
	before := m.chat.Status()
	var cmd tea.Cmd
	m.box, cmd = m.box.Update(msg, m.props())
	if m.chat.Status() == before {
		return m, cmd
	}

	m.recentIdx = -1
	m.refreshAnswer()
	var observeCmd tea.Cmd
	m.box, observeCmd = m.box.Update(nil, m.props())
	return m, tea.Batch(cmd, observeCmd)
}

// observe lets the search box react to state changed outside its Update.
func (m appModel) observe() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.box, cmd = m.box.Update(nil, m.props())
	return m, cmd
}

// pickRecent moves through the remembered questions and puts the picked
// one into the search box, selected so typing replaces it.
func (m appModel) pickRecent(delta int) (tea.Model, tea.Cmd) {
	recent := m.chat.Recent()
	if len(recent) == 0 || m.chat.Status().Busy() {
		return m, nil
	}

	if m.recentIdx < 0 {
		m.recentIdx = 0
	} else {
		m.recentIdx = (m.recentIdx + delta + len(recent)) % len(recent)
	}
	m.keyword.SetQuery(recent[m.recentIdx])

	// Lower the signal first so the box sees a fresh selection.
	m.fromSelection = false
	m.box, _ = m.box.Update(nil, m.props())
	m.fromSelection = true
	return m.observe()
}

func (m *appModel) resizeAnswer() {
	m.answer.Width = m.width - 4
	h := m.bodyHeight() - len(m.links) - 3
	if h < 3 {
		h = 3
	}
	m.answer.Height = h
}

// refreshAnswer re-renders the latest answer and extracts its links.
func (m *appModel) refreshAnswer() {
	content := m.chat.LastAnswer()
	if m.chat.Status() == askai.StatusError && m.chat.Err() != nil {
		content += fmt.Sprintf("\n\n**Error:** %v", m.chat.Err())
	}
	m.links = linkify.ExtractLinks(content)
	m.resizeAnswer()
	m.answer.SetContent(renderMarkdown(content, m.answer.Width))
	if m.chat.Status().Busy() {
		m.answer.GotoBottom()
	}
}

func (m appModel) bodyHeight() int {
	// search box with hint, status bar and help line.
	return m.height - 6
}

func loadDocs(s storage.Storage) tea.Cmd {
	return func() tea.Msg {
		docs, err := s.List(context.Background(), storage.ListOptions{Limit: recentDocs})
		return loadDocsMsg{docs: docs, err: err}
	}
}

func (m appModel) openLink(i int) tea.Cmd {
	if i < 0 || i >= len(m.links) {
		return nil
	}
	return m.openURL(m.links[i].URL)
}

func (m appModel) openURL(url string) tea.Cmd {
	open := m.open
	return func() tea.Msg {
		if err := open(url); err != nil {
			slog.Warn("failed to open url", "url", url, "error", err)
			return statusMsg{fmt.Sprintf("Error: %v", err)}
		}
		return statusMsg{fmt.Sprintf("Opened: %s", url)}
	}
}

func openInBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported OS %s", runtime.GOOS)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}

// Run starts the TUI application
func Run(s storage.Storage, opts Options) error {
	p := tea.NewProgram(initialModel(s, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
