package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"legalassist-backend/legifrance"
	"legalassist-backend/llm"
	"legalassist-backend/models"

	"go.uber.org/zap"
)

// Default pipeline settings
const (
	DefaultChatModel       = "mistral-large-latest"
	DefaultHypothesisModel = "mistral-small-latest"
	DefaultMaxResults      = 10
	DefaultChatTimeout     = 60 * time.Second
)

// Stage is a state of the pipeline state machine
type Stage string

const (
	StageHypothesis    Stage = "HYPOTHESIS"
	StageRetrieval     Stage = "RETRIEVAL"
	StageSynthesis     Stage = "SYNTHESIS"
	StageDone          Stage = "DONE"
	StageCriticalError Stage = "CRITICAL_ERROR"
)

// Run outcomes reported to the PipelineObserver
const (
	OutcomeAnswered  = "answered"
	OutcomeNoSources = "no_sources"
	OutcomeError     = "synthesis_error"
	OutcomeCritical  = "critical"
)

var (
	ErrNoChatModel = errors.New("no chat model configured")
	ErrNoSearcher  = errors.New("no article searcher configured")
	ErrNoKeywords  = errors.New("no search keywords")
)

// ArticleSearcher runs a keyword search against the legal database
type ArticleSearcher interface {
	Search(ctx context.Context, keywords, codeFilter string, pageSize int) (*legifrance.SearchResponse, error)
}

// SearchRecorder keeps raw search responses
type SearchRecorder interface {
	RecordSearch(ctx context.Context, query, codeFilter string, resp *legifrance.SearchResponse) error
}

// PipelineObserver receives pipeline measurements
type PipelineObserver interface {
	ObservePipelineRun(outcome string)
	ObserveStage(stage string, d time.Duration)
	ObserveSearchResults(n int)
}

// Pipeline runs the hypothesis-first question answering pipeline:
// hypothesis generation, retrieval, then synthesis with citation checks.
type Pipeline struct {
	model           llm.ChatModel
	searcher        ArticleSearcher
	recorder        SearchRecorder
	observer        PipelineObserver
	logger          *zap.Logger
	clean           func(string) string
	now             func() time.Time
	chatModel       string
	hypothesisModel string
	maxResults      int
	chatTimeout     time.Duration
	offline         bool
}

// PipelineOption is a functional option for Pipeline
type PipelineOption func(*Pipeline)

// PipelineWithChatModel sets the model client used by every stage
func PipelineWithChatModel(m llm.ChatModel) PipelineOption {
	return func(p *Pipeline) {
		p.model = m
	}
}

// PipelineWithSearcher sets the article searcher
func PipelineWithSearcher(s ArticleSearcher) PipelineOption {
	return func(p *Pipeline) {
		p.searcher = s
	}
}

// PipelineWithSearchRecorder sets where raw search responses are kept
func PipelineWithSearchRecorder(r SearchRecorder) PipelineOption {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// PipelineWithObserver sets the metrics observer
func PipelineWithObserver(o PipelineObserver) PipelineOption {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// PipelineWithLogger sets the logger
func PipelineWithLogger(logger *zap.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// PipelineWithModels overrides the synthesis and hypothesis model names. Empty values keep the defaults.
func PipelineWithModels(chat, hypothesis string) PipelineOption {
	return func(p *Pipeline) {
		if chat != "" {
			p.chatModel = chat
		}
		if hypothesis != "" {
			p.hypothesisModel = hypothesis
		}
	}
}

// PipelineWithOfflineMode marks the pipeline as running without a real model
func PipelineWithOfflineMode(offline bool) PipelineOption {
	return func(p *Pipeline) {
		p.offline = offline
	}
}

// PipelineWithChatTimeout sets the timeout for one model call. Non-positive values keep the default.
func PipelineWithChatTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if d > 0 {
			p.chatTimeout = d
		}
	}
}

// PipelineWithCleaner sets the content cleaning hook applied before chunking
func PipelineWithCleaner(clean func(string) string) PipelineOption {
	return func(p *Pipeline) {
		p.clean = clean
	}
}

// PipelineWithClock sets the time source used for answer timestamps
func PipelineWithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		p.now = now
	}
}

// NewPipeline creates a pipeline
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		logger:          zap.NewNop(),
		clean:           legifrance.CleanText,
		now:             time.Now,
		chatModel:       DefaultChatModel,
		hypothesisModel: DefaultHypothesisModel,
		maxResults:      DefaultMaxResults,
		chatTimeout:     DefaultChatTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Offline reports whether model calls are stubbed
func (p *Pipeline) Offline() bool {
	return p.offline
}

// ChatTimeout is the timeout for one model call, as configured on the model clients
func (p *Pipeline) ChatTimeout() time.Duration {
	return p.chatTimeout
}

// Run is the record of one pipeline execution
type Run struct {
	Question   string
	CodeFilter string
	State      Stage
	Hypothesis models.Hypothesis
	Query      string
	Articles   []models.Article
	Snippets   []models.Snippet
	Citations  CitationReport
	Answer     models.StructuredAnswer
	// Err is the failure absorbed by a stage, or the critical error that ended the run
	Err        error
}

// ProcessQuestion runs the pipeline and returns its answer
func (p *Pipeline) ProcessQuestion(ctx context.Context, question, codeFilter string) models.StructuredAnswer {
	return p.Run(ctx, question, codeFilter).Answer
}

// Run executes HYPOTHESIS → RETRIEVAL → SYNTHESIS → DONE. Stages absorb their own failures;
// a cancelled context or a panic ends the run in CRITICAL_ERROR with the critical answer.
func (p *Pipeline) Run(ctx context.Context, question, codeFilter string) (run *Run) {
	run = &Run{Question: question, CodeFilter: codeFilter, State: StageHypothesis}
	p.logger.Info("pipeline started", zap.String("question", question), zap.String("code", codeFilter))

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline panic",
				zap.String("stage", string(run.State)),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			p.fail(run, fmt.Errorf("%v", r))
		}
	}()

	// 1. Hypothesis
	if err := ctx.Err(); err != nil {
		p.fail(run, err)
		return run
	}
	started := p.now()
	hyp := p.GenerateHypothesis(ctx, question)
	p.observeStage(StageHypothesis, started)
	run.Hypothesis = hyp.Hypothesis
	if hyp.Err != nil {
		run.Err = hyp.Err
		p.logger.Warn("hypothesis degraded to fallback", zap.Error(hyp.Err))
	}

	// 2. Retrieval
	run.State = StageRetrieval
	if err := ctx.Err(); err != nil {
		p.fail(run, err)
		return run
	}
	started = p.now()
	retrieval := p.SearchWithHypothesis(ctx, run.Hypothesis, codeFilter)
	p.observeStage(StageRetrieval, started)
	run.Query = retrieval.Query
	run.Articles = retrieval.Articles
	if retrieval.Err != nil && run.Err == nil {
		run.Err = retrieval.Err
	}

	// 3. Synthesis
	run.State = StageSynthesis
	if err := ctx.Err(); err != nil {
		p.fail(run, err)
		return run
	}
	started = p.now()
	synthesis := p.BuildFinalAnswer(ctx, question, run.Hypothesis, run.Articles)
	p.observeStage(StageSynthesis, started)
	run.Snippets = synthesis.Snippets
	run.Citations = synthesis.Citations
	run.Answer = synthesis.Answer
	if synthesis.Err != nil {
		run.Err = synthesis.Err
	}

	run.State = StageDone
	outcome := OutcomeAnswered
	switch {
	case len(run.Articles) == 0:
		outcome = OutcomeNoSources
	case synthesis.Err != nil:
		outcome = OutcomeError
	}
	p.observeRun(outcome)
	p.logger.Info("pipeline finished",
		zap.String("outcome", outcome),
		zap.Int("articles", len(run.Articles)),
		zap.Int("snippets", len(run.Snippets)),
		zap.String("qualification", run.Answer.Qualification),
	)
	return run
}

func (p *Pipeline) fail(run *Run, err error) {
	p.logger.Error("pipeline failed", zap.String("stage", string(run.State)), zap.Error(err))
	run.State = StageCriticalError
	run.Err = err
	run.Answer = CriticalAnswer(run.Question, err.Error(), p.now())
	p.observeRun(OutcomeCritical)
}

func (p *Pipeline) observeStage(stage Stage, started time.Time) {
	if p.observer != nil {
		p.observer.ObserveStage(string(stage), p.now().Sub(started))
	}
}

func (p *Pipeline) observeRun(outcome string) {
	if p.observer != nil {
		p.observer.ObservePipelineRun(outcome)
	}
}
