// Package linkify pulls displayable links out of free-form text such as
// streamed AI answers.
package linkify

import (
	"regexp"
	"strings"

	"github.com/bunchhieng/docsearch/internal/model"
)

const (
	schemePattern = `[a-zA-Z][a-zA-Z0-9+.\-]*://`
	urlChars      = `[A-Za-z0-9\-._~:/?#\[\]@!$&'()*+,;=%]+`
)

// Markdown links take precedence over bare URLs starting at the same offset.
// A markdown URL may hold one level of balanced parentheses.
var linkPattern = regexp.MustCompile(
	`\[([^\[\]]*)\]\((` + schemePattern + `(?:[^\s()]|\([^\s()]*\))+)\)` +
		`|(` + schemePattern + urlChars + `)`,
)

// ExtractLinks returns the links found in text in order of first appearance.
// URLs are deduplicated by their trimmed form; the first occurrence wins,
// so a markdown link keeps its title even if the bare URL repeats later.
func ExtractLinks(text string) []model.LinkRecord {
	links := []model.LinkRecord{}
	if text == "" {
		return links
	}

	seen := make(map[string]struct{})
	for _, m := range linkPattern.FindAllStringSubmatchIndex(text, -1) {
		var rawURL, title string
		if m[4] >= 0 {
			title = strings.TrimSpace(text[m[2]:m[3]])
			rawURL = text[m[4]:m[5]]
		} else {
			rawURL = text[m[6]:m[7]]
		}

		u := TrimURL(rawURL)
		if !model.IsAbsoluteURL(u) {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		links = append(links, model.LinkRecord{URL: u, Title: title})
	}
	return links
}

// TrimURL strips trailing sentence punctuation and closing brackets that
// have no opening partner inside the URL.
func TrimURL(u string) string {
	for u != "" {
		last := u[len(u)-1]
		switch last {
		case '.', ',', '!', '?', ';', ':', '*':
			u = u[:len(u)-1]
			continue
		case ')':
			if strings.Count(u, "(") < strings.Count(u, ")") {
				u = u[:len(u)-1]
				continue
			}
		case ']':
			if strings.Count(u, "[") < strings.Count(u, "]") {
				u = u[:len(u)-1]
				continue
			}
		}
		return u
	}
	return u
}
