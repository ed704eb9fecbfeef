package legifrance

import (
	"html"
	"regexp"
	"strings"
)

var (
	lineBreakTag  = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockCloseTag = regexp.MustCompile(`(?i)</(p|div|li|h[1-6]|table|tr)\s*>`)
	anyTag        = regexp.MustCompile(`<[^>]+>`)
	blankLine     = regexp.MustCompile(`\n\s*\n`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// CleanText strips markup from article content and collapses whitespace.
// Paragraph breaks survive as a single blank line so the content can still be split into alineas.
func CleanText(raw string) string {
	if raw == "" {
		return ""
	}

	text := lineBreakTag.ReplaceAllString(raw, "\n")
	text = blockCloseTag.ReplaceAllString(text, "\n\n")
	text = anyTag.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)

	paragraphs := blankLine.Split(text, -1)
	cleaned := paragraphs[:0]
	for _, p := range paragraphs {
		p = strings.TrimSpace(whitespaceRun.ReplaceAllString(p, " "))
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, "\n\n")
}
