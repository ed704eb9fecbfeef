package repository

import (
	"context"
	"fmt"

	"legalassist-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ArticlesTableSQL creates the table used by PostgresArticleRepository
const ArticlesTableSQL = `
CREATE TABLE IF NOT EXISTS articles (
    article_id VARCHAR(64) PRIMARY KEY,
    code_name TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    legal_status VARCHAR(32) NOT NULL DEFAULT '',
    section TEXT NOT NULL DEFAULT '',
    numero VARCHAR(64) NOT NULL DEFAULT '',
    query_keywords TEXT NOT NULL DEFAULT '',
    extraction_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    source VARCHAR(32) NOT NULL DEFAULT 'legifrance_api'
);

CREATE INDEX IF NOT EXISTS idx_articles_code_name ON articles(code_name);
CREATE INDEX IF NOT EXISTS idx_articles_extraction_date ON articles(extraction_date DESC);`

// PostgresArticleRepository handles database operations for articles
type PostgresArticleRepository struct {
	db *pgxpool.Pool
}

// NewPostgresArticleRepository creates a new article repository
func NewPostgresArticleRepository(db *pgxpool.Pool) *PostgresArticleRepository {
	return &PostgresArticleRepository{db: db}
}

// Save upserts an article; the latest extraction wins
func (r *PostgresArticleRepository) Save(ctx context.Context, rec models.ArticleRecord) error {
	query := `
		INSERT INTO articles (
			article_id, code_name, title, content, legal_status,
			section, numero, query_keywords, extraction_date, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (article_id) DO UPDATE SET
			code_name = EXCLUDED.code_name,
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			legal_status = EXCLUDED.legal_status,
			section = EXCLUDED.section,
			numero = EXCLUDED.numero,
			query_keywords = EXCLUDED.query_keywords,
			extraction_date = EXCLUDED.extraction_date,
			source = EXCLUDED.source`

	_, err := r.db.Exec(
		ctx, query,
		rec.ArticleID,
		rec.CodeName,
		rec.Title,
		rec.Content,
		rec.LegalStatus,
		rec.Section,
		rec.Numero,
		rec.QueryKeywords,
		rec.ExtractionDate,
		rec.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert article %s: %w", rec.ArticleID, err)
	}
	return nil
}

// List retrieves all articles, oldest extraction first
func (r *PostgresArticleRepository) List(ctx context.Context) ([]models.ArticleRecord, error) {
	query := `
		SELECT article_id, code_name, title, content, legal_status,
			section, numero, query_keywords, extraction_date, source
		FROM articles
		ORDER BY extraction_date, article_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var records []models.ArticleRecord
	for rows.Next() {
		var rec models.ArticleRecord
		err := rows.Scan(
			&rec.ArticleID,
			&rec.CodeName,
			&rec.Title,
			&rec.Content,
			&rec.LegalStatus,
			&rec.Section,
			&rec.Numero,
			&rec.QueryKeywords,
			&rec.ExtractionDate,
			&rec.Source,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating articles: %w", err)
	}

	return records, nil
}
