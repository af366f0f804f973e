package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/bunchhieng/docsearch/internal/model"
)

const (
	maxURLLen   = 50
	maxTitleLen = 40
	maxTagsLen  = 24
	ellipsisLen = 3
)

func (c *Commands) printDocsTable(docs []*model.Document) error {
	// Calculate column widths based on header and content
	colIDLen := len("ID")
	colURLLen := len("URL")
	colTitleLen := len("TITLE")
	colCreatedLen := len("CREATED")
	colTagsLen := len("TAGS")

	for _, doc := range docs {
		colIDLen = max(colIDLen, len(doc.ID))
		colURLLen = max(colURLLen, min(len(doc.URL), maxURLLen))
		colTitleLen = max(colTitleLen, min(len(doc.Title), maxTitleLen))
		colCreatedLen = max(colCreatedLen, len(formatTime(doc.CreatedAt)))
		colTagsLen = max(colTagsLen, min(len(doc.Tags), maxTagsLen))
	}

	// Add padding (one space each side)
	colIDLen += 2
	colURLLen += 2
	colTitleLen += 2
	colCreatedLen += 2
	colTagsLen += 2

	totalWidth := colIDLen + colURLLen + colTitleLen + colCreatedLen + colTagsLen + 4

	header := fmt.Sprintf("%s│%s %s%-*s%s │ %s%-*s%s │ %s%-*s%s │ %s%-*s%s │ %s%-*s%s %s│%s",
		colorDim, colorReset,
		colorBold, colIDLen-2, "ID", colorReset,
		colorBold, colURLLen-2, "URL", colorReset,
		colorBold, colTitleLen-2, "TITLE", colorReset,
		colorBold, colCreatedLen-2, "CREATED", colorReset,
		colorBold, colTagsLen-2, "TAGS", colorReset,
		colorDim, colorReset)

	separator := fmt.Sprintf("%s├%s┼%s┼%s┼%s┼%s┤%s",
		colorDim,
		strings.Repeat("─", colIDLen),
		strings.Repeat("─", colURLLen),
		strings.Repeat("─", colTitleLen),
		strings.Repeat("─", colCreatedLen),
		strings.Repeat("─", colTagsLen),
		colorReset)

	c.printf("%s┌%s┐%s\n", colorDim, strings.Repeat("─", totalWidth), colorReset)
	c.printf("%s\n%s\n", header, separator)

	for _, doc := range docs {
		row := fmt.Sprintf("%s│%s %s%-*s%s │ %s%-*s%s │ %-*s │ %s%-*s%s │ %s%-*s%s %s│%s",
			colorDim, colorReset,
			colorBold+colorCyan, colIDLen-2, doc.ID, colorReset,
			colorCyan, colURLLen-2, truncateString(doc.URL, colURLLen-2), colorReset,
			colTitleLen-2, truncateString(doc.Title, colTitleLen-2),
			colorDim, colCreatedLen-2, formatTime(doc.CreatedAt), colorReset,
			colorYellow, colTagsLen-2, truncateString(doc.Tags, colTagsLen-2), colorReset,
			colorDim, colorReset)
		c.printf("%s\n", row)
	}

	c.printf("%s└%s┘%s\n", colorDim, strings.Repeat("─", totalWidth), colorReset)
	return nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-ellipsisLen] + "..."
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
