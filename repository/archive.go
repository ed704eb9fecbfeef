package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"legalassist-backend/export"
	"legalassist-backend/legifrance"
	"legalassist-backend/models"
	"legalassist-backend/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DatasetKey is where the CSV export of all stored articles lives
const DatasetKey = processedPrefix + "articles_dataset.csv"

const (
	rawPrefix           = "raw/"
	dumpTimestampLayout = "20060102_150405"
)

// SearchDumpMetadata describes a raw search dump
type SearchDumpMetadata struct {
	ExtractionDate string  `json:"extraction_date"`
	QueryKeywords  string  `json:"query_keywords"`
	CodeNom        *string `json:"code_nom"`
	ResultCount    int     `json:"result_count"`
}

// SearchDump is the document written for each recorded search
type SearchDump struct {
	Metadata SearchDumpMetadata        `json:"metadata"`
	Results  []legifrance.SearchResult `json:"results"`
}

// Archive stores the articles behind answers, raw search dumps and the CSV dataset.
// Records always go to object storage; mirrors (such as Postgres) receive a copy.
type Archive struct {
	store   storage.Storage
	primary ArticleRepository
	mirrors []ArticleRepository
	logger  *zap.Logger
	now     func() time.Time
}

// ArchiveOption is a functional option for Archive
type ArchiveOption func(*Archive)

// ArchiveWithMirror adds a repository that receives a copy of every saved record
func ArchiveWithMirror(repo ArticleRepository) ArchiveOption {
	return func(a *Archive) {
		a.mirrors = append(a.mirrors, repo)
	}
}

// ArchiveWithLogger sets the logger
func ArchiveWithLogger(logger *zap.Logger) ArchiveOption {
	return func(a *Archive) {
		a.logger = logger
	}
}

// ArchiveWithClock sets the time source for extraction dates and dump names
func ArchiveWithClock(now func() time.Time) ArchiveOption {
	return func(a *Archive) {
		a.now = now
	}
}

// NewArchive creates an archive over store
func NewArchive(store storage.Storage, opts ...ArchiveOption) *Archive {
	a := &Archive{
		store:  store,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.primary = NewStorageArticleRepository(store, a.logger)
	return a
}

// SaveArticles persists one record per article. Every article is attempted; failures are joined.
func (a *Archive) SaveArticles(ctx context.Context, articles []models.Article, queryKeywords string) error {
	extractedAt := a.now()
	var errs []error
	for _, art := range articles {
		rec := models.NewArticleRecord(art, queryKeywords, extractedAt)
		if err := a.primary.Save(ctx, rec); err != nil {
			errs = append(errs, err)
			continue
		}
		for _, m := range a.mirrors {
			if err := m.Save(ctx, rec); err != nil {
				errs = append(errs, err)
			}
		}
	}
	a.logger.Info("articles archived", zap.Int("count", len(articles)), zap.Int("failures", len(errs)))
	return errors.Join(errs...)
}

// Records returns every stored article record
func (a *Archive) Records(ctx context.Context) ([]models.ArticleRecord, error) {
	return a.primary.List(ctx)
}

// ExportCSV regenerates the dataset from the stored records. Nothing is written when there are none.
func (a *Archive) ExportCSV(ctx context.Context) error {
	records, err := a.primary.List(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	var buf bytes.Buffer
	if err := export.WriteArticlesCSV(&buf, records); err != nil {
		return err
	}
	if err := a.store.Put(ctx, DatasetKey, &buf, storage.ContentTypeFor(DatasetKey)); err != nil {
		return fmt.Errorf("failed to store dataset: %w", err)
	}
	a.logger.Info("dataset exported", zap.String("key", DatasetKey), zap.Int("articles", len(records)))
	return nil
}

// DatasetCSV opens the dataset, exporting it first if it was never written
func (a *Archive) DatasetCSV(ctx context.Context) (io.ReadCloser, error) {
	rc, err := a.store.Get(ctx, DatasetKey)
	if err == nil || !errors.Is(err, storage.ErrNotFound) {
		return rc, err
	}
	if err := a.ExportCSV(ctx); err != nil {
		return nil, err
	}
	return a.store.Get(ctx, DatasetKey)
}

// RecordSearch writes the raw search response under raw/
func (a *Archive) RecordSearch(ctx context.Context, query, codeFilter string, resp *legifrance.SearchResponse) error {
	if resp == nil {
		return nil
	}

	ts := a.now().Format(dumpTimestampLayout)
	dump := SearchDump{
		Metadata: SearchDumpMetadata{
			ExtractionDate: ts,
			QueryKeywords:  query,
			ResultCount:    len(resp.Results),
		},
		Results: resp.Results,
	}
	if codeFilter != "" {
		dump.Metadata.CodeNom = &codeFilter
	}
	if dump.Results == nil {
		dump.Results = []legifrance.SearchResult{}
	}

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode search dump: %w", err)
	}

	key := fmt.Sprintf("%ssearch_%s_%s.json", rawPrefix, ts, uuid.NewString()[:8])
	if err := a.store.Put(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("failed to store search dump: %w", err)
	}
	a.logger.Debug("search response recorded", zap.String("key", key), zap.Int("results", len(resp.Results)))
	return nil
}
