package model

import (
	"net/url"
	"strings"
	"time"
)

// Document is a saved page in the local search corpus.
type Document struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content,omitempty"`
	Tags      string    `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks if the document has an absolute URL.
func (d *Document) Validate() error {
	if !IsAbsoluteURL(d.URL) {
		return ErrInvalidURL
	}
	return nil
}

// DisplayTitle returns the title, falling back to the URL.
func (d *Document) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.URL
}

// TagList returns tags as a slice of strings.
func (d *Document) TagList() []string {
	if d.Tags == "" {
		return nil
	}
	tags := strings.Split(d.Tags, ",")
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			result = append(result, tag)
		}
	}
	return result
}

// MergeTags merges tags from another document, deduplicating case-insensitively.
func (d *Document) MergeTags(other *Document) {
	if other.Tags == "" {
		return
	}
	existing := make(map[string]bool)
	for _, tag := range d.TagList() {
		existing[strings.ToLower(tag)] = true
	}

	newTags := d.TagList()
	for _, tag := range other.TagList() {
		tagLower := strings.ToLower(tag)
		if !existing[tagLower] {
			existing[tagLower] = true
			newTags = append(newTags, tag)
		}
	}
	d.Tags = strings.Join(newTags, ",")
}

// IsAbsoluteURL reports whether s parses as a URL with both scheme and host.
func IsAbsoluteURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
