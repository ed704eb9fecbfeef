package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"legalassist-backend/models"
)

// Chunking limits
const (
	MaxChunkedArticles  = 8
	MaxUnitsPerArticle  = 7
	ChunkPackLimit      = 2000
	MaxChunksPerArticle = 3
	MaxSnippetRunes     = 2500
)

const (
	untitled         = "(sans titre)"
	chunkIDSeparator = "__"
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// PrepareSnippets splits article content into citable snippets.
// Consecutive alineas are packed greedily into chunks below ChunkPackLimit runes; each snippet is
// then truncated to MaxSnippetRunes. Snippet ids are "<article_id>__<chunk_index>". An article whose
// id was already chunked in this call is skipped so that ids stay unique.
func PrepareSnippets(articles []models.Article, clean func(string) string) []models.Snippet {
	if len(articles) > MaxChunkedArticles {
		articles = articles[:MaxChunkedArticles]
	}

	var snippets []models.Snippet
	seen := make(map[string]struct{}, len(articles))

	for i, art := range articles {
		artID := art.ID
		if artID == "" {
			artID = fmt.Sprintf("unk_%d", i)
		}
		if _, dup := seen[artID]; dup {
			continue
		}
		seen[artID] = struct{}{}

		title := art.Title
		if title == "" {
			title = untitled
		}

		content := art.Content
		if clean != nil {
			content = clean(content)
		}
		if content == "" {
			continue
		}

		chunks := packUnits(paragraphBreak.Split(content, -1))
		if len(chunks) > MaxChunksPerArticle {
			chunks = chunks[:MaxChunksPerArticle]
		}
		for idx, chunk := range chunks {
			snippets = append(snippets, models.Snippet{
				ID:    fmt.Sprintf("%s%s%d", artID, chunkIDSeparator, idx),
				ArtID: artID,
				Title: title,
				Text:  truncateRunes(chunk, MaxSnippetRunes),
			})
		}
	}
	return snippets
}

// packUnits packs the first MaxUnitsPerArticle non-blank units into chunks
func packUnits(units []string) []string {
	if len(units) > MaxUnitsPerArticle {
		units = units[:MaxUnitsPerArticle]
	}

	var chunks []string
	var current string
	for _, unit := range units {
		trimmed := strings.TrimSpace(unit)
		if trimmed == "" {
			continue
		}
		if utf8.RuneCountInString(current)+utf8.RuneCountInString(unit) < ChunkPackLimit {
			if current != "" {
				current += "\n\n" + trimmed
			} else {
				current = trimmed
			}
			continue
		}
		if current != "" {
			chunks = append(chunks, current)
		}
		current = trimmed
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
