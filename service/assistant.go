package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"legalassist-backend/legifrance"
	"legalassist-backend/models"

	"go.uber.org/zap"
)

// Assistant modes surfaced to API consumers
const (
	ModeOnline  = "online"
	ModeOffline = "offline"
)

const (
	maxSerializedArticles = 8
	maxExcerptRunes       = 700
	responseTimeLayout    = "2006-01-02T15:04:05.000000"
)

var ErrEmptyQuestion = errors.New("question must not be empty")

// ArticleArchive persists the articles behind an answer and keeps the tabular export current
type ArticleArchive interface {
	SaveArticles(ctx context.Context, articles []models.Article, queryKeywords string) error
	ExportCSV(ctx context.Context) error
}

// codeHints maps a code to question fragments that point at it, checked in order
var codeHints = []struct {
	code  string
	hints []string
}{
	{"Code du travail", []string{"cdd", "contrat à durée déterminée", "contrat duree", "licenciement", "employeur", "salarie", "prud'h", "prudhom"}},
	{"Code civil", []string{"responsabilité civile", "responsabilite", "contrat civil", "obligation", "dommage", "préjudice", "prejudice"}},
	{"Code de commerce", []string{"commerce", "société", "entreprise", "actionnaire", "cession parts"}},
	{"Code pénal", []string{"infraction", "délit", "crime", "pénal", "sanction pénale"}},
	{"Code de la route", []string{"permis", "conduite", "vehicule", "route", "infraction routière"}},
}

// AssistantService answers questions for the HTTP and CLI front ends
type AssistantService struct {
	pipeline *Pipeline
	archive  ArticleArchive
	logger   *zap.Logger
	now      func() time.Time
}

// AssistantServiceOption is a functional option for AssistantService
type AssistantServiceOption func(*AssistantService)

// AssistantWithPipeline sets the pipeline
func AssistantWithPipeline(p *Pipeline) AssistantServiceOption {
	return func(s *AssistantService) {
		s.pipeline = p
	}
}

// AssistantWithArchive sets the article archive
func AssistantWithArchive(a ArticleArchive) AssistantServiceOption {
	return func(s *AssistantService) {
		s.archive = a
	}
}

// AssistantWithLogger sets the logger
func AssistantWithLogger(logger *zap.Logger) AssistantServiceOption {
	return func(s *AssistantService) {
		s.logger = logger
	}
}

// AssistantWithClock sets the time source for response timestamps
func AssistantWithClock(now func() time.Time) AssistantServiceOption {
	return func(s *AssistantService) {
		s.now = now
	}
}

// NewAssistantService creates a new assistant service
func NewAssistantService(opts ...AssistantServiceOption) *AssistantService {
	s := &AssistantService{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pipeline == nil {
		s.pipeline = NewPipeline(PipelineWithLogger(s.logger))
	}
	return s
}

// ListCodes returns the searchable codes
func (s *AssistantService) ListCodes() []models.LegalCode {
	return legifrance.Codes()
}

// Mode reports whether model calls are real or stubbed
func (s *AssistantService) Mode() string {
	if s.pipeline.Offline() {
		return ModeOffline
	}
	return ModeOnline
}

// Ask validates the question, runs the pipeline and builds the response envelope.
// Persistence failures are logged, never returned.
func (s *AssistantService) Ask(ctx context.Context, question string, code *string) (*models.ChatResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	var effectiveCode *string
	if code != nil && strings.TrimSpace(*code) != "" {
		c := strings.TrimSpace(*code)
		effectiveCode = &c
	} else if inferred := InferCode(question); inferred != "" {
		effectiveCode = &inferred
	}

	codeFilter := ""
	if effectiveCode != nil {
		codeFilter = *effectiveCode
	}
	run := s.pipeline.Run(ctx, question, codeFilter)
	analysis := run.Answer
	articles := analysis.Metadata.ArticlesBruts

	if len(articles) > 0 && s.archive != nil {
		if err := s.archive.SaveArticles(ctx, articles, question); err != nil {
			s.logger.Warn("failed to save articles", zap.Error(err))
		} else if err := s.archive.ExportCSV(ctx); err != nil {
			s.logger.Warn("failed to export articles", zap.Error(err))
		}
	}

	keywords := analysis.Metadata.KeywordsUtilises
	if keywords == nil {
		keywords = []string{}
	}

	return &models.ChatResponse{
		Question: question,
		Code:     effectiveCode,
		Answer:   FormatAnswerMarkdown(analysis),
		Analysis: analysis,
		Articles: SerializeArticles(articles),
		QueryAnalysis: models.QueryAnalysis{
			Keywords:   keywords,
			Hypothesis: analysis.HypothesisOriginale,
		},
		Timestamp: s.now().UTC().Format(responseTimeLayout),
		Mode:      s.Mode(),
	}, nil
}

// InferCode guesses the code to search from keywords in the question. It returns "" when nothing matches.
func InferCode(question string) string {
	q := strings.ToLower(question)
	for _, h := range codeHints {
		if _, known := legifrance.LookupCode(h.code); !known {
			continue
		}
		for _, token := range h.hints {
			if strings.Contains(q, token) {
				return h.code
			}
		}
	}
	return ""
}

// SerializeArticles returns the short form of the first eight articles
func SerializeArticles(articles []models.Article) []models.ArticleSummary {
	if len(articles) > maxSerializedArticles {
		articles = articles[:maxSerializedArticles]
	}
	out := make([]models.ArticleSummary, 0, len(articles))
	for _, a := range articles {
		out = append(out, models.ArticleSummary{
			ID:      a.ID,
			Title:   a.Title,
			Code:    a.CodeName,
			Excerpt: truncateRunes(a.Content, maxExcerptRunes),
			Source:  a.Source,
		})
	}
	return out
}
