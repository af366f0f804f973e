package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/bunchhieng/docsearch/internal/askai"
	"github.com/bunchhieng/docsearch/internal/ingest"
	"github.com/bunchhieng/docsearch/internal/linkify"
	"github.com/bunchhieng/docsearch/internal/model"
	"github.com/bunchhieng/docsearch/internal/objstore"
	"github.com/bunchhieng/docsearch/internal/storage"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

// Commands handles all CLI command execution.
type Commands struct {
	storage storage.Storage
	out     io.Writer
	open    func(url string) error
}

// NewCommands creates a new Commands instance writing to out.
func NewCommands(s storage.Storage, out io.Writer) *Commands {
	return &Commands{storage: s, out: out, open: openInBrowser}
}

func (c *Commands) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

// suggestID suggests a similar ID if the given ID is not found.
func (c *Commands) suggestID(ctx context.Context, id string) string {
	docs, err := c.storage.List(ctx, storage.ListOptions{})
	if err != nil || len(docs) == 0 {
		return ""
	}

	id = strings.ToLower(id)
	bestMatch := ""
	minDistance := len(id) + 1

	for _, doc := range docs {
		candidate := doc.ID
		if len(candidate) > len(id) {
			candidate = candidate[:len(id)]
		}
		distance := levenshteinDistance(id, candidate)
		if distance < minDistance && distance <= 3 {
			minDistance = distance
			bestMatch = doc.ID
		}
	}

	return bestMatch
}

func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(s1)][len(s2)]
}

// AddOptions are the optional fields of Add.
type AddOptions struct {
	Title string
	Tags  string
	// HTMLFile is a saved copy of the page whose markdown becomes the
	// document content. "-" reads standard input.
	HTMLFile string
	Content  string
	Stdin    io.Reader
}

// Add adds a new document or updates the one with the same URL.
func (c *Commands) Add(ctx context.Context, url string, opts AddOptions) error {
	doc := &model.Document{
		URL:     url,
		Title:   opts.Title,
		Content: opts.Content,
		Tags:    opts.Tags,
	}

	if err := doc.Validate(); err != nil {
		return fmt.Errorf("%w: %s", err, url)
	}

	if opts.HTMLFile != "" {
		page, err := c.readHTML(opts.HTMLFile, opts.Stdin, url)
		if err != nil {
			return err
		}
		if doc.Title == "" {
			doc.Title = page.Title
		}
		doc.Content = page.Markdown
	}

	existing, _ := c.storage.List(ctx, storage.ListOptions{})
	wasUpdate := false
	for _, d := range existing {
		if d.URL == url {
			wasUpdate = true
			break
		}
	}

	created, err := c.storage.Add(ctx, doc)
	if err != nil {
		return fmt.Errorf("add document: %w", err)
	}

	if wasUpdate {
		c.printf("%sUpdated%s document %s%s%s: %s%s%s\n", colorYellow, colorReset, colorBold, created.ID, colorReset, colorCyan, created.URL, colorReset)
	} else {
		c.printf("%sAdded%s document %s%s%s: %s%s%s\n", colorGreen, colorReset, colorBold, created.ID, colorReset, colorCyan, created.URL, colorReset)
	}
	return nil
}

func (c *Commands) readHTML(filename string, stdin io.Reader, url string) (*ingest.Page, error) {
	var r io.Reader = stdin
	if filename != "-" {
		file, err := os.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		defer file.Close()
		r = file
	}
	if r == nil {
		return nil, fmt.Errorf("no html input")
	}
	return ingest.New().FromReader(r, url)
}

// List lists documents with optional filters.
func (c *Commands) List(ctx context.Context, tag string, limit int) error {
	docs, err := c.storage.List(ctx, storage.ListOptions{Tag: tag, Limit: limit})
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	if len(docs) == 0 {
		c.printf("No documents found.\n")
		return nil
	}

	return c.printDocsTable(docs)
}

// Open opens a document in the default browser.
func (c *Commands) Open(ctx context.Context, id string) error {
	doc, err := c.storage.Get(ctx, id)
	if err != nil {
		return c.handleNotFound(ctx, err, id, "get document")
	}

	if err := c.open(doc.URL); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}

	c.printf("%sOpened:%s %s%s%s\n", colorGreen, colorReset, colorCyan, doc.URL, colorReset)
	return nil
}

// Show prints a document's content.
func (c *Commands) Show(ctx context.Context, id string) error {
	doc, err := c.storage.Get(ctx, id)
	if err != nil {
		return c.handleNotFound(ctx, err, id, "get document")
	}

	c.printf("%s%s%s\n%s%s%s\n\n%s\n", colorBold, doc.DisplayTitle(), colorReset, colorCyan, doc.URL, colorReset, doc.Content)
	return nil
}

// Remove deletes one or more documents.
func (c *Commands) Remove(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return fmt.Errorf("at least one ID required")
	}

	var deleted []string
	var failed []string

	for _, id := range ids {
		err := c.storage.Delete(ctx, id)
		switch {
		case err == nil:
			deleted = append(deleted, id)
		case errors.Is(err, model.ErrInvalidID):
			failed = append(failed, fmt.Sprintf("%s (invalid format)", id))
		case errors.Is(err, model.ErrNotFound):
			msg := fmt.Sprintf("%s (not found)", id)
			if suggestion := c.suggestID(ctx, id); suggestion != "" {
				msg += fmt.Sprintf(" - %sDid you mean:%s %s%s%s?", colorYellow, colorReset, colorBold, suggestion, colorReset)
			}
			failed = append(failed, msg)
		default:
			failed = append(failed, fmt.Sprintf("%s (%v)", id, err))
		}
	}

	if len(deleted) == 1 {
		c.printf("%sDeleted%s document %s%s%s.\n", colorRed, colorReset, colorBold, deleted[0], colorReset)
	} else if len(deleted) > 1 {
		c.printf("%sDeleted%s %d document(s): %s%s%s\n", colorRed, colorReset, len(deleted), colorBold, strings.Join(deleted, ", "), colorReset)
	}

	if len(failed) > 0 {
		return fmt.Errorf("failed to delete: %s", strings.Join(failed, ", "))
	}

	return nil
}

func (c *Commands) handleNotFound(ctx context.Context, err error, id string, action string) error {
	if errors.Is(err, model.ErrNotFound) {
		msg := fmt.Sprintf("document %s%s%s not found", colorBold, id, colorReset)
		if suggestion := c.suggestID(ctx, id); suggestion != "" {
			msg += fmt.Sprintf("\n\n%sDid you mean:%s %s%s%s?", colorYellow, colorReset, colorBold, suggestion, colorReset)
		}
		return errors.New(msg)
	}
	return fmt.Errorf("%s: %w", action, err)
}

// Export writes all documents as JSON.
func (c *Commands) Export(ctx context.Context, w io.Writer) error {
	docs, err := c.storage.Export(ctx)
	if err != nil {
		return fmt.Errorf("export documents: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(docs); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	return nil
}

// Import imports documents from a JSON file.
func (c *Commands) Import(ctx context.Context, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	var docs []*model.Document
	if err := json.NewDecoder(file).Decode(&docs); err != nil {
		return fmt.Errorf("decode JSON: %w", err)
	}

	if err := c.storage.Import(ctx, docs); err != nil {
		return fmt.Errorf("import documents: %w", err)
	}

	c.printf("%sImported%s %s%d%s document(s).\n", colorGreen, colorReset, colorBold, len(docs), colorReset)
	return nil
}

// Search performs a full-text search.
func (c *Commands) Search(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return model.ErrEmptyQuery
	}

	docs, err := c.storage.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search documents: %w", err)
	}

	if len(docs) == 0 {
		c.printf("No documents found.\n")
		return nil
	}

	return c.printDocsTable(docs)
}

// Ask answers question from the saved documents, streaming the answer,
// then lists the links it cites. The question is remembered for the TUI.
func (c *Commands) Ask(ctx context.Context, question string, delay time.Duration) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return model.ErrEmptyQuery
	}

	answerer := askai.NewLocalAnswerer(c.storage, delay)
	stream, err := answerer.Answer(ctx, question)
	if err != nil {
		return fmt.Errorf("answer: %w", err)
	}

	var answer strings.Builder
	for chunk := range stream {
		if chunk.Err != nil {
			return fmt.Errorf("answer: %w", chunk.Err)
		}
		answer.WriteString(chunk.Text)
		c.printf("%s", chunk.Text)
	}
	c.printf("\n")
	if err := ctx.Err(); err != nil {
		return err
	}

	askai.Remember(c.recentStore(), question)

	links := linkify.ExtractLinks(answer.String())
	if len(links) > 0 {
		c.printf("\n")
		c.printLinks(links)
	}
	return nil
}

// Recent prints remembered questions, most recent first.
func (c *Commands) Recent() error {
	recent, _ := c.recentStore().GetItem()
	if len(recent) == 0 {
		c.printf("No recent questions.\n")
		return nil
	}
	for i, q := range recent {
		c.printf("%s%2d%s  %s\n", colorDim, i+1, colorReset, q)
	}
	return nil
}

func (c *Commands) recentStore() *objstore.Store[[]string] {
	return objstore.New[[]string](c.storage.KV(askai.KVNamespace), askai.RecentKey)
}

// Links extracts the links in r and prints them, as JSON when asJSON is set.
func (c *Commands) Links(r io.Reader, asJSON bool) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	links := linkify.ExtractLinks(string(data))
	if asJSON {
		encoder := json.NewEncoder(c.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(links)
	}

	if len(links) == 0 {
		c.printf("No links found.\n")
		return nil
	}
	c.printLinks(links)
	return nil
}

func (c *Commands) printLinks(links []model.LinkRecord) {
	for i, link := range links {
		if link.Title != "" {
			c.printf("%s%2d%s  %s%s%s\n    %s%s%s\n", colorDim, i+1, colorReset, colorBold, link.Title, colorReset, colorCyan, link.URL, colorReset)
		} else {
			c.printf("%s%2d%s  %s%s%s\n", colorDim, i+1, colorReset, colorCyan, link.URL, colorReset)
		}
	}
}

// Version prints the version.
func (c *Commands) Version(version string) {
	c.printf("docsearch version %s\n", version)
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
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
	return cmd.Run()
}
