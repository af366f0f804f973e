// Package ingest turns saved web pages into documents.
package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// Page is the markdown rendition of an HTML page.
type Page struct {
	Title    string
	Markdown string
}

// Converter sanitizes HTML and converts it to markdown.
type Converter struct {
	policy *bluemonday.Policy
	md     *converter.Converter
}

// New returns a Converter using the UGC sanitizing policy.
func New() *Converter {
	return &Converter{
		policy: bluemonday.UGCPolicy(),
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// FromHTML converts raw HTML to markdown. Relative links are resolved
// against sourceURL. The title comes from <title>, falling back to the
// first <h1>.
func (c *Converter) FromHTML(raw, sourceURL string) (*Page, error) {
	title := extractTitle(raw)

	clean := c.policy.Sanitize(raw)
	md, err := c.md.ConvertString(clean, converter.WithDomain(sourceURL))
	if err != nil {
		return nil, fmt.Errorf("failed to convert html: %w", err)
	}

	return &Page{
		Title:    title,
		Markdown: strings.TrimSpace(md),
	}, nil
}

// FromReader reads r fully and calls FromHTML.
func (c *Converter) FromReader(r io.Reader, sourceURL string) (*Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read html: %w", err)
	}
	return c.FromHTML(string(data), sourceURL)
}

func extractTitle(raw string) string {
	z := html.NewTokenizer(strings.NewReader(raw))

	var h1 []string
	var inTitle, inH1 bool
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(h1, " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "title":
				inTitle = true
			case "h1":
				inH1 = len(h1) == 0
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "title":
				inTitle = false
			case "h1":
				inH1 = false
			}
		case html.TextToken:
			text := strings.TrimSpace(string(z.Text()))
			if inTitle && text != "" {
				return text
			}
			if inH1 && text != "" {
				h1 = append(h1, text)
			}
		}
	}
}
