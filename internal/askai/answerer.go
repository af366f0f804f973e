package askai

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/bunchhieng/docsearch/internal/model"
)

// Chunk is one piece of a streamed answer. A chunk with Err set ends the stream.
type Chunk struct {
	Text string
	Err  error
}

// Answerer produces a streamed answer to a question. The returned channel
// is closed when the answer is complete or ctx is done.
type Answerer interface {
	Answer(ctx context.Context, question string) (<-chan Chunk, error)
}

// Retriever finds documents for a keyword query.
type Retriever interface {
	Search(ctx context.Context, query string) ([]*model.Document, error)
}

const (
	maxCited    = 3
	maxRelated  = 2
	excerptSize = 220
)

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "can": true, "do": true,
	"does": true, "for": true, "how": true, "i": true, "in": true, "is": true,
	"it": true, "me": true, "my": true, "of": true, "on": true, "or": true,
	"the": true, "to": true, "what": true, "when": true, "where": true,
	"which": true, "who": true, "why": true, "with": true, "you": true,
}

// LocalAnswerer answers from the saved corpus: it retrieves documents for
// the question's keywords and writes a markdown summary citing them.
type LocalAnswerer struct {
	retriever Retriever
	delay     time.Duration
}

// NewLocalAnswerer returns an answerer that streams one word every delay.
func NewLocalAnswerer(r Retriever, delay time.Duration) *LocalAnswerer {
	return &LocalAnswerer{retriever: r, delay: delay}
}

// Answer implements Answerer.
func (a *LocalAnswerer) Answer(ctx context.Context, question string) (<-chan Chunk, error) {
	keywords := Keywords(question)
	if len(keywords) == 0 {
		return nil, model.ErrEmptyQuery
	}

	docs, err := a.retrieve(ctx, keywords)
	if err != nil {
		return nil, fmt.Errorf("retrieve documents: %w", err)
	}

	text := compose(question, docs)
	ch := make(chan Chunk)
	go func() {
		defer close(ch)
		for _, word := range strings.SplitAfter(text, " ") {
			if a.delay > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(a.delay):
				}
			}
			select {
			case <-ctx.Done():
				return
			case ch <- Chunk{Text: word}:
			}
		}
	}()
	return ch, nil
}

// retrieve ranks documents by how many keywords they match, then by the
// best rank they reached in any single keyword search.
func (a *LocalAnswerer) retrieve(ctx context.Context, keywords []string) ([]*model.Document, error) {
	type scored struct {
		doc   *model.Document
		hits  int
		best  int
		order int
	}
	byID := make(map[string]*scored)
	var all []*scored

	for _, kw := range keywords {
		docs, err := a.retriever.Search(ctx, kw)
		if err != nil {
			return nil, err
		}
		for rank, d := range docs {
			s, ok := byID[d.ID]
			if !ok {
				s = &scored{doc: d, best: rank, order: len(all)}
				byID[d.ID] = s
				all = append(all, s)
			}
			s.hits++
			if rank < s.best {
				s.best = rank
			}
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].hits != all[j].hits {
			return all[i].hits > all[j].hits
		}
		if all[i].best != all[j].best {
			return all[i].best < all[j].best
		}
		return all[i].order < all[j].order
	})

	docs := make([]*model.Document, len(all))
	for i, s := range all {
		docs[i] = s.doc
	}
	return docs, nil
}

func compose(question string, docs []*model.Document) string {
	var b strings.Builder
	q := strings.TrimSpace(question)

	if len(docs) == 0 {
		fmt.Fprintf(&b, "I could not find anything about **%s** in your saved documents. ", q)
		b.WriteString("Try adding pages with `docsearch add <url>` and ask again.")
		return b.String()
	}

	fmt.Fprintf(&b, "Here is what your saved documents say about **%s**:\n\n", q)
	cited := docs
	if len(cited) > maxCited {
		cited = cited[:maxCited]
	}
	for _, d := range cited {
		fmt.Fprintf(&b, "- [%s](%s)", d.DisplayTitle(), d.URL)
		if ex := excerpt(d.Content); ex != "" {
			fmt.Fprintf(&b, ": %s", ex)
		}
		b.WriteString("\n")
	}

	related := docs[len(cited):]
	if len(related) > maxRelated {
		related = related[:maxRelated]
	}
	if len(related) > 0 {
		b.WriteString("\nSee also ")
		for i, d := range related {
			if i > 0 {
				b.WriteString(" and ")
			}
			b.WriteString(d.URL)
		}
		b.WriteString(".")
	}
	return strings.TrimRight(b.String(), "\n")
}

// excerpt returns the first paragraph of content, cut at a word boundary.
func excerpt(content string) string {
	content = strings.TrimSpace(content)
	if i := strings.Index(content, "\n\n"); i >= 0 {
		content = content[:i]
	}
	content = strings.Join(strings.Fields(content), " ")
	if len(content) <= excerptSize {
		return content
	}
	cut := strings.LastIndex(content[:excerptSize], " ")
	if cut <= 0 {
		cut = excerptSize
	}
	return content[:cut] + "…"
}

// Keywords lowercases question, splits it on non-alphanumerics and drops
// stop words and duplicates.
func Keywords(question string) []string {
	fields := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool)
	var out []string
	for _, f := range fields {
		if stopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
