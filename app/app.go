package app

import (
	"context"
	"errors"
	"fmt"

	"legalassist-backend/config"
	"legalassist-backend/legifrance"
	"legalassist-backend/llm"
	"legalassist-backend/observability"
	"legalassist-backend/repository"
	"legalassist-backend/service"
	"legalassist-backend/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// searchBurst lets a question's single search go out without waiting on the limiter
const searchBurst = 2

// Components are the wired collaborators shared by the server and the CLI
type Components struct {
	Search    *legifrance.Client
	Archive   *repository.Archive
	Pipeline  *service.Pipeline
	Assistant *service.AssistantService

	closers []func() error
}

// Close releases the model client and the database pool
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewSearchClient builds the Légifrance client from the configuration
func NewSearchClient(cfg *config.Config, logger *zap.Logger) (*legifrance.Client, error) {
	if err := cfg.ValidateSearch(); err != nil {
		return nil, err
	}
	return legifrance.NewClient(legifrance.Config{
		ClientID:     cfg.LegifranceClientID,
		ClientSecret: cfg.LegifranceClientSecret,
		TokenURL:     cfg.LegifranceTokenURL,
		BaseURL:      cfg.LegifranceBaseURL,
	},
		legifrance.WithLogger(logger.Named("legifrance")),
		legifrance.WithCacheTTL(cfg.SearchCacheTTL),
		legifrance.WithRateLimit(cfg.SearchRateLimit, searchBurst),
	)
}

// NewArchive builds the article archive over the configured storage. When DATABASE_URL is set,
// records are mirrored to Postgres; the returned close function releases the pool.
func NewArchive(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*repository.Archive, func() error, error) {
	noop := func() error { return nil }

	store, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("storage initialized", zap.String("type", string(cfg.Storage.Type)))

	opts := []repository.ArchiveOption{repository.ArchiveWithLogger(logger.Named("archive"))}
	closeFn := noop
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("failed to ping database: %w", err)
		}
		logger.Info("postgres connection established")
		opts = append(opts, repository.ArchiveWithMirror(repository.NewPostgresArticleRepository(pool)))
		closeFn = func() error {
			pool.Close()
			return nil
		}
	}
	return repository.NewArchive(store, opts...), closeFn, nil
}

// Build wires the search client, archive, model client, pipeline and assistant.
// metrics may be nil.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) (*Components, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Components{}

	search, err := NewSearchClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	c.Search = search

	archive, closeArchive, err := NewArchive(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.Archive = archive
	c.closers = append(c.closers, closeArchive)

	model, offline, closeModel, err := llm.NewChatModel(ctx, llm.ProviderConfig{
		Provider:      cfg.LLMProvider,
		MistralAPIKey: cfg.MistralAPIKey,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		AllowOffline:  cfg.AllowOffline,
		Timeout:       cfg.LLMTimeout,
		Logger:        logger.Named("llm"),
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	c.closers = append(c.closers, closeModel)

	if !offline {
		model = llm.NewRetryingClient(model,
			llm.RetryWithRetries(cfg.LLMRetries),
			llm.RetryWithObserver(metrics),
			llm.RetryWithLogger(logger.Named("llm")),
		)
	}

	c.Pipeline = service.NewPipeline(
		service.PipelineWithChatModel(model),
		service.PipelineWithSearcher(search),
		service.PipelineWithSearchRecorder(archive),
		service.PipelineWithObserver(metrics),
		service.PipelineWithLogger(logger.Named("pipeline")),
		service.PipelineWithModels(cfg.ChatModel, cfg.HypothesisModel),
		service.PipelineWithChatTimeout(cfg.LLMTimeout),
		service.PipelineWithOfflineMode(offline),
	)
	c.Assistant = service.NewAssistantService(
		service.AssistantWithPipeline(c.Pipeline),
		service.AssistantWithArchive(archive),
		service.AssistantWithLogger(logger.Named("assistant")),
	)

	logger.Info("assistant ready",
		zap.String("provider", cfg.LLMProvider),
		zap.Bool("offline", offline),
		zap.Bool("postgres", cfg.DatabaseURL != ""),
	)
	return c, nil
}
