package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"legalassist-backend/legifrance"
	"legalassist-backend/llm"
	"legalassist-backend/models"

	"go.uber.org/zap"
)

const (
	hypothesisMaxTokens   = 600
	hypothesisTemperature = 0.77
	synthesisMaxTokens    = 2500
	synthesisTemperature  = 0.2
	maxQueryKeywords      = 5
)

// HypothesisOutcome is the result of the hypothesis stage. Hypothesis is always usable;
// Err reports why the fallback was used.
type HypothesisOutcome struct {
	Hypothesis models.Hypothesis
	Err        error
}

// RetrievalOutcome is the result of the retrieval stage. An empty Articles slice is a normal outcome.
type RetrievalOutcome struct {
	Query    string
	Articles []models.Article
	Err      error
}

// SynthesisOutcome is the result of the synthesis stage. Answer is always schema-complete.
type SynthesisOutcome struct {
	Answer    models.StructuredAnswer
	Snippets  []models.Snippet
	Citations CitationReport
	Err       error
}

// rawHypothesis is the model output. Text fields accept any JSON value and are stringified.
type rawHypothesis struct {
	Hypothesis  any             `json:"hypothesis"`
	Keywords    json.RawMessage `json:"keywords"`
	LegalDomain any             `json:"legal_domain"`
	Context     any             `json:"context"`
	SearchScope any             `json:"search_scope"`
}

func simulationHypothesis() models.Hypothesis {
	return models.Hypothesis{
		Hypothesis:  "SIMULATION - Hypothèse de test",
		Keywords:    []string{"test", "simulation"},
		LegalDomain: models.DomainGeneral,
		Context:     "Mode debug",
		SearchScope: models.ScopeCodeSeul,
	}
}

func fallbackHypothesis(question string, err error) models.Hypothesis {
	return models.Hypothesis{
		Hypothesis:  "Erreur: " + err.Error(),
		Keywords:    ExtractSimpleKeywords(question),
		LegalDomain: models.DomainGeneral,
		Context:     "",
	}
}

// GenerateHypothesis asks the hypothesis model for a legal framing of the question.
// Any failure yields a fallback hypothesis with naive keywords.
func (p *Pipeline) GenerateHypothesis(ctx context.Context, question string) HypothesisOutcome {
	if p.offline {
		return HypothesisOutcome{Hypothesis: simulationHypothesis()}
	}
	if p.model == nil {
		return HypothesisOutcome{Hypothesis: fallbackHypothesis(question, ErrNoChatModel), Err: ErrNoChatModel}
	}

	raw, err := p.model.Complete(ctx, llm.CompletionRequest{
		Prompt:        buildHypothesisPrompt(question),
		SystemMessage: hypothesisSystemMessage,
		Model:         p.hypothesisModel,
		MaxTokens:     hypothesisMaxTokens,
		Temperature:   hypothesisTemperature,
		ForceJSON:     true,
	})
	if err != nil {
		return HypothesisOutcome{Hypothesis: fallbackHypothesis(question, err), Err: err}
	}

	h, err := parseHypothesis(ExtractJSON(raw), question)
	if err != nil {
		p.logger.Warn("unparseable hypothesis", zap.Error(err), zap.String("raw", truncateRunes(raw, 500)))
		return HypothesisOutcome{Hypothesis: fallbackHypothesis(question, err), Err: err}
	}
	p.logger.Info("hypothesis generated",
		zap.String("domain", h.LegalDomain),
		zap.Strings("keywords", h.Keywords),
	)
	return HypothesisOutcome{Hypothesis: h}
}

func parseHypothesis(cleaned, question string) (models.Hypothesis, error) {
	var raw rawHypothesis
	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return models.Hypothesis{}, fmt.Errorf("invalid hypothesis JSON: %w", err)
	}

	h := models.Hypothesis{
		Hypothesis:  textOr(raw.Hypothesis, "Hypothèse non générée"),
		LegalDomain: textOr(raw.LegalDomain, models.DomainGeneral),
		Context:     textOr(raw.Context, ""),
		SearchScope: textOr(raw.SearchScope, ""),
	}

	keywords, present, err := parseKeywords(raw.Keywords)
	if err != nil {
		return models.Hypothesis{}, err
	}
	if !present {
		keywords = ExtractSimpleKeywords(question)
	}
	h.Keywords = keywords
	return h, nil
}

// textOr stringifies v, or returns fallback when v is absent or null
func textOr(v any, fallback string) string {
	if v == nil {
		return fallback
	}
	return stringify(v)
}

// parseKeywords accepts a list or a single string
func parseKeywords(raw json.RawMessage) ([]string, bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, true, nil
	}

	var list []any
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false, fmt.Errorf("invalid keywords: %w", err)
	}
	keywords := make([]string, 0, len(list))
	for _, item := range list {
		if s := strings.TrimSpace(stringify(item)); s != "" {
			keywords = append(keywords, s)
		}
	}
	return keywords, true, nil
}

// SearchWithHypothesis searches with the first five hypothesis keywords.
// Search failures and empty results both yield zero articles.
func (p *Pipeline) SearchWithHypothesis(ctx context.Context, h models.Hypothesis, codeFilter string) RetrievalOutcome {
	keywords := h.Keywords
	if len(keywords) == 0 {
		keywords = ExtractSimpleKeywords(h.Hypothesis)
	}
	if len(keywords) > maxQueryKeywords {
		keywords = keywords[:maxQueryKeywords]
	}
	query := strings.Join(keywords, " ")
	out := RetrievalOutcome{Query: query, Articles: []models.Article{}}

	if strings.TrimSpace(query) == "" {
		out.Err = ErrNoKeywords
		return out
	}
	if p.searcher == nil {
		out.Err = ErrNoSearcher
		return out
	}

	p.logger.Info("searching", zap.String("query", query), zap.String("code", codeFilter))
	resp, err := p.searcher.Search(ctx, query, codeFilter, p.maxResults)
	if err != nil {
		p.logger.Warn("search failed", zap.Error(err))
		out.Err = err
		p.observeSearch(0)
		return out
	}

	if p.recorder != nil && resp != nil {
		if err := p.recorder.RecordSearch(ctx, query, codeFilter, resp); err != nil {
			p.logger.Warn("failed to record search response", zap.Error(err))
		}
	}

	articles := legifrance.NormalizeAll(resp, p.maxResults)
	for i := range articles {
		articles[i].Source = legifrance.SourceAPI
	}
	if articles != nil {
		out.Articles = articles
	}
	p.observeSearch(len(out.Articles))
	p.logger.Info("articles found", zap.Int("count", len(out.Articles)))
	return out
}

func (p *Pipeline) observeSearch(n int) {
	if p.observer != nil {
		p.observer.ObserveSearchResults(n)
	}
}

// BuildFinalAnswer synthesizes a cited answer from the articles.
// Without articles it returns the no-sources answer; synthesis failures return the error answer.
func (p *Pipeline) BuildFinalAnswer(ctx context.Context, question string, h models.Hypothesis, articles []models.Article) SynthesisOutcome {
	now := p.now()
	if len(articles) == 0 {
		return SynthesisOutcome{Answer: NoSourcesAnswer(question, h, now), Snippets: []models.Snippet{}}
	}

	snippets := PrepareSnippets(articles, p.clean)
	prompt := buildSynthesisPrompt(question, h.Hypothesis, buildSourceBlock(snippets))

	if p.model == nil {
		return SynthesisOutcome{Answer: ErrorAnswer(ErrNoChatModel.Error(), question, h, now), Snippets: snippets, Err: ErrNoChatModel}
	}

	p.logger.Info("synthesizing answer", zap.Int("snippets", len(snippets)), zap.Int("prompt_chars", len(prompt)))
	raw, err := p.model.Complete(ctx, llm.CompletionRequest{
		Prompt:        prompt,
		SystemMessage: synthesisSystemMessage,
		Model:         p.chatModel,
		MaxTokens:     synthesisMaxTokens,
		Temperature:   synthesisTemperature,
		ForceJSON:     true,
	})
	if err != nil {
		p.logger.Error("synthesis model call failed", zap.Error(err))
		return SynthesisOutcome{Answer: ErrorAnswer(err.Error(), question, h, now), Snippets: snippets, Err: err}
	}

	parsed, err := DecodeParsedAnswer(ExtractJSON(raw))
	if err != nil {
		p.logger.Error("synthesis output is not JSON", zap.Error(err), zap.String("raw", truncateRunes(raw, 500)))
		msg := "Erreur format JSON: " + err.Error()
		return SynthesisOutcome{Answer: ErrorAnswer(msg, question, h, now), Snippets: snippets, Err: fmt.Errorf("decode synthesis: %w", err)}
	}

	answer, report := VerifyAndNormalize(parsed, snippets, articles, h, question, now)
	if report.Uncited {
		p.logger.Warn("no citation found in argumentation")
	}
	p.logger.Info("citations checked",
		zap.Int("markers", len(report.Markers)),
		zap.Int("accepted", len(report.Deduplicated)),
		zap.Int("dropped", len(report.Dropped)),
	)
	return SynthesisOutcome{Answer: answer, Snippets: snippets, Citations: report}
}
