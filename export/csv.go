package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"legalassist-backend/models"
)

// ArticleColumns is the column order of the article dataset
var ArticleColumns = []string{
	"article_id",
	"code_name",
	"title",
	"content",
	"legal_status",
	"section",
	"numero",
	"query_keywords",
	"extraction_date",
	"source",
}

// WriteArticlesCSV writes the header row then one row per record
func WriteArticlesCSV(w io.Writer, records []models.ArticleRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ArticleColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.ArticleID,
			r.CodeName,
			r.Title,
			r.Content,
			r.LegalStatus,
			r.Section,
			r.Numero,
			r.QueryKeywords,
			r.ExtractionDate.Format(time.RFC3339),
			r.Source,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", r.ArticleID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
