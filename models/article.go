package models

import (
	"time"
)

// Article is the normalized view of a Légifrance search result
type Article struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	CodeName    string `json:"code_name"`
	LegalStatus string `json:"legal_status"`
	Section     string `json:"section"`
	Numero      string `json:"numero"`
	Source      string `json:"source"`
}

// ArticleRecord represents an article as it is persisted after a question was answered
type ArticleRecord struct {
	ArticleID      string    `json:"article_id"`
	CodeName       string    `json:"code_name"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	LegalStatus    string    `json:"legal_status"`
	Section        string    `json:"section"`
	Numero         string    `json:"numero"`
	QueryKeywords  string    `json:"query_keywords"`
	ExtractionDate time.Time `json:"extraction_date"`
	Source         string    `json:"source"`
}

// NewArticleRecord builds the persisted form of an article
func NewArticleRecord(a Article, queryKeywords string, extractedAt time.Time) ArticleRecord {
	source := a.Source
	if source == "" {
		source = "legifrance_api"
	}
	return ArticleRecord{
		ArticleID:      a.ID,
		CodeName:       a.CodeName,
		Title:          a.Title,
		Content:        a.Content,
		LegalStatus:    a.LegalStatus,
		Section:        a.Section,
		Numero:         a.Numero,
		QueryKeywords:  queryKeywords,
		ExtractionDate: extractedAt,
		Source:         source,
	}
}

// LegalCode represents one entry of the code catalogue offered to users
type LegalCode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}
