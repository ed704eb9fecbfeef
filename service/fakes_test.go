package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"legalassist-backend/legifrance"
	"legalassist-backend/llm"
	"legalassist-backend/models"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// scriptedLLM answers by system message so each stage gets its own canned reply
type scriptedLLM struct {
	mu          sync.Mutex
	hypothesis  string
	hypErr      error
	synthesis   string
	synthErr    error
	panicOnCall bool
	requests    []llm.CompletionRequest
}

func (s *scriptedLLM) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.panicOnCall {
		panic("model exploded")
	}
	if req.SystemMessage == hypothesisSystemMessage {
		return s.hypothesis, s.hypErr
	}
	return s.synthesis, s.synthErr
}

func (s *scriptedLLM) calls() []llm.CompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]llm.CompletionRequest(nil), s.requests...)
}

type searchCall struct {
	keywords   string
	codeFilter string
	pageSize   int
}

type fakeSearch struct {
	resp  *legifrance.SearchResponse
	err   error
	calls []searchCall
}

func (f *fakeSearch) Search(ctx context.Context, keywords, codeFilter string, pageSize int) (*legifrance.SearchResponse, error) {
	f.calls = append(f.calls, searchCall{keywords: keywords, codeFilter: codeFilter, pageSize: pageSize})
	return f.resp, f.err
}

type recordedSearch struct {
	query, code string
	results     int
}

type fakeRecorder struct {
	records []recordedSearch
	err     error
}

func (f *fakeRecorder) RecordSearch(ctx context.Context, query, codeFilter string, resp *legifrance.SearchResponse) error {
	f.records = append(f.records, recordedSearch{query: query, code: codeFilter, results: len(resp.Results)})
	return f.err
}

type fakeObserver struct {
	runs    []string
	stages  []string
	results []int
}

func (f *fakeObserver) ObservePipelineRun(outcome string) { f.runs = append(f.runs, outcome) }
func (f *fakeObserver) ObserveStage(stage string, d time.Duration) {
	f.stages = append(f.stages, stage)
}
func (f *fakeObserver) ObserveSearchResults(n int) { f.results = append(f.results, n) }

type fakeArchive struct {
	saved     []models.Article
	keywords  string
	exports   int
	saveErr   error
	exportErr error
}

func (f *fakeArchive) SaveArticles(ctx context.Context, articles []models.Article, queryKeywords string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, articles...)
	f.keywords = queryKeywords
	return nil
}

func (f *fakeArchive) ExportCSV(ctx context.Context) error {
	f.exports++
	return f.exportErr
}

var errTimeout = errors.New("context deadline exceeded (Client.Timeout exceeded while awaiting headers)")

func travailResponse() *legifrance.SearchResponse {
	return &legifrance.SearchResponse{Results: []legifrance.SearchResult{
		{
			Titles: []legifrance.TitleRef{{Title: "Code du travail"}},
			Sections: []legifrance.Section{{
				Title: "Licenciement pour motif personnel - travail",
				Extracts: []legifrance.Extract{{
					ID:     "LEGIARTI000006901112",
					Num:    "L1232-1",
					Values: []string{"Tout licenciement pour motif personnel est motivé.", "Il est justifié par une cause réelle et sérieuse."},
				}},
			}},
		},
		{
			Titles: []legifrance.TitleRef{{Title: "Code du travail"}},
			Sections: []legifrance.Section{{
				Title: "Entretien préalable",
				Extracts: []legifrance.Extract{{
					ID:     "LEGIARTI000006901113",
					Num:    "L1232-2",
					Values: []string{"L'employeur qui envisage de licencier un salarié le convoque."},
				}},
			}},
		},
	}}
}
