package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"legalassist-backend/legifrance"
	"legalassist-backend/models"
)

// NaiveSearch searches with every word of the question longer than three letters, without any model.
// It backs the CLI when the model is unavailable or the pipeline failed.
func NaiveSearch(ctx context.Context, searcher ArticleSearcher, question, codeFilter string) ([]models.Article, error) {
	if searcher == nil {
		return nil, ErrNoSearcher
	}

	var words []string
	for _, w := range strings.Fields(strings.ToLower(question)) {
		if utf8.RuneCountInString(w) > 3 {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return nil, ErrNoKeywords
	}

	resp, err := searcher.Search(ctx, strings.Join(words, " "), codeFilter, DefaultMaxResults)
	if err != nil {
		return nil, fmt.Errorf("naive search: %w", err)
	}
	return legifrance.NormalizeAll(resp, 0), nil
}
