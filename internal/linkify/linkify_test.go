package linkify

import (
	"reflect"
	"testing"

	"github.com/bunchhieng/docsearch/internal/model"
)

func TestExtractLinks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []model.LinkRecord
	}{
		{
			name: "no links",
			text: "hello world",
			want: []model.LinkRecord{},
		},
		{
			name: "empty",
			text: "",
			want: []model.LinkRecord{},
		},
		{
			name: "markdown and bare",
			text: "See [DocSearch](https://docsearch.algolia.com) and https://example.com/docs.",
			want: []model.LinkRecord{
				{URL: "https://docsearch.algolia.com", Title: "DocSearch"},
				{URL: "https://example.com/docs"},
			},
		},
		{
			name: "dedup and trim punctuation",
			text: "Check https://algolia.com, https://algolia.com!",
			want: []model.LinkRecord{{URL: "https://algolia.com"}},
		},
		{
			name: "markdown first keeps title",
			text: "Read [the guide](https://go.dev/doc/) then open https://go.dev/doc/ again.",
			want: []model.LinkRecord{{URL: "https://go.dev/doc/", Title: "the guide"}},
		},
		{
			name: "bare first drops later title",
			text: "https://go.dev/doc/ is also [the guide](https://go.dev/doc/)",
			want: []model.LinkRecord{{URL: "https://go.dev/doc/"}},
		},
		{
			name: "unbalanced closing paren",
			text: "(see https://example.com/a)",
			want: []model.LinkRecord{{URL: "https://example.com/a"}},
		},
		{
			name: "balanced parens kept",
			text: "https://en.wikipedia.org/wiki/Go_(programming_language).",
			want: []model.LinkRecord{{URL: "https://en.wikipedia.org/wiki/Go_(programming_language)"}},
		},
		{
			name: "markdown url with balanced parens keeps title",
			text: "Read [Go](https://en.wikipedia.org/wiki/Go_(programming_language)) now.",
			want: []model.LinkRecord{{URL: "https://en.wikipedia.org/wiki/Go_(programming_language)", Title: "Go"}},
		},
		{
			name: "several trailing marks",
			text: "Really? https://example.com/faq?!;",
			want: []model.LinkRecord{{URL: "https://example.com/faq"}},
		},
		{
			name: "query string survives",
			text: "Try https://example.com/search?q=go&page=2.",
			want: []model.LinkRecord{{URL: "https://example.com/search?q=go&page=2"}},
		},
		{
			name: "bold markdown around url",
			text: "**https://example.com/bold**",
			want: []model.LinkRecord{{URL: "https://example.com/bold"}},
		},
		{
			name: "no host skipped",
			text: "broken file:/// and https:// here",
			want: []model.LinkRecord{},
		},
		{
			name: "order of appearance",
			text: "b https://b.dev a [A](https://a.dev)",
			want: []model.LinkRecord{
				{URL: "https://b.dev"},
				{URL: "https://a.dev", Title: "A"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractLinks(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractLinks(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractLinksNoDuplicates(t *testing.T) {
	text := "[x](https://x.dev) https://x.dev https://y.dev. https://y.dev, [y](https://y.dev) https://x.dev!"
	links := ExtractLinks(text)

	seen := make(map[string]bool)
	for _, l := range links {
		if seen[l.URL] {
			t.Fatalf("Duplicate URL %s in %v", l.URL, links)
		}
		seen[l.URL] = true
	}
	if len(links) != 2 {
		t.Errorf("Expected 2 links, got %d: %v", len(links), links)
	}
}

func TestTrimURL(t *testing.T) {
	tests := map[string]string{
		"https://a.dev.":     "https://a.dev",
		"https://a.dev/x)":   "https://a.dev/x",
		"https://a.dev/(x)":  "https://a.dev/(x)",
		"https://a.dev/x]":   "https://a.dev/x",
		"https://a.dev/x):.": "https://a.dev/x",
		"":                   "",
	}
	for in, want := range tests {
		if got := TrimURL(in); got != want {
			t.Errorf("TrimURL(%q) = %q, want %q", in, got, want)
		}
	}
}
