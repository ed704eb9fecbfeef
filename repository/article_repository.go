package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"legalassist-backend/models"
	"legalassist-backend/storage"

	"go.uber.org/zap"
)

const (
	processedPrefix = "processed/"
	articlePrefix   = processedPrefix + "article_"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// ArticleRepository persists article records
type ArticleRepository interface {
	Save(ctx context.Context, rec models.ArticleRecord) error
	List(ctx context.Context) ([]models.ArticleRecord, error)
}

// ArticleKey is the storage key of an article record
func ArticleKey(articleID string) string {
	id := unsafeKeyChars.ReplaceAllString(strings.TrimSpace(articleID), "_")
	if id == "" {
		id = "sans_id"
	}
	return articlePrefix + id + ".json"
}

// StorageArticleRepository keeps one JSON document per article in object storage
type StorageArticleRepository struct {
	store  storage.Storage
	logger *zap.Logger
}

// NewStorageArticleRepository creates a new storage-backed article repository
func NewStorageArticleRepository(store storage.Storage, logger *zap.Logger) *StorageArticleRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StorageArticleRepository{store: store, logger: logger}
}

// Save writes the record, replacing an earlier extraction of the same article
func (r *StorageArticleRepository) Save(ctx context.Context, rec models.ArticleRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode article %s: %w", rec.ArticleID, err)
	}
	if err := r.store.Put(ctx, ArticleKey(rec.ArticleID), bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("failed to store article %s: %w", rec.ArticleID, err)
	}
	return nil
}

// List loads every stored record. Unreadable documents are logged and skipped.
func (r *StorageArticleRepository) List(ctx context.Context) ([]models.ArticleRecord, error) {
	keys, err := r.store.List(ctx, articlePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	records := make([]models.ArticleRecord, 0, len(keys))
	for _, key := range keys {
		if !strings.HasSuffix(key, ".json") {
			continue
		}
		rec, err := r.load(ctx, key)
		if err != nil {
			r.logger.Warn("skipping unreadable article", zap.String("key", key), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	r.logger.Debug("articles loaded", zap.Int("count", len(records)))
	return records, nil
}

func (r *StorageArticleRepository) load(ctx context.Context, key string) (models.ArticleRecord, error) {
	rc, err := r.store.Get(ctx, key)
	if err != nil {
		return models.ArticleRecord{}, err
	}
	defer rc.Close()

	var rec models.ArticleRecord
	if err := json.NewDecoder(rc).Decode(&rec); err != nil {
		return models.ArticleRecord{}, err
	}
	return rec, nil
}
