package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"legalassist-backend/llm"
	"legalassist-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAssistant(model llm.ChatModel, search *fakeSearch, archive ArticleArchive, opts ...PipelineOption) *AssistantService {
	return NewAssistantService(
		AssistantWithPipeline(newTestPipeline(model, search, opts...)),
		AssistantWithArchive(archive),
		AssistantWithClock(fixedClock),
	)
}

func strPtr(s string) *string { return &s }

func TestAsk_EmptyQuestion(t *testing.T) {
	s := newTestAssistant(&scriptedLLM{}, &fakeSearch{}, nil)

	for _, q := range []string{"", "   \n\t"} {
		resp, err := s.Ask(context.Background(), q, nil)
		assert.ErrorIs(t, err, ErrEmptyQuestion)
		assert.Nil(t, resp)
	}
}

func TestAsk_AnsweredWithInferredCode(t *testing.T) {
	search := &fakeSearch{resp: travailResponse()}
	archive := &fakeArchive{}
	s := newTestAssistant(&scriptedLLM{hypothesis: goodHypothesis, synthesis: goodSynthesis}, search, archive)

	resp, err := s.Ask(context.Background(), "  Mon employeur peut-il me licencier ?  ", nil)

	require.NoError(t, err)
	assert.Equal(t, "Mon employeur peut-il me licencier ?", resp.Question)
	require.NotNil(t, resp.Code)
	assert.Equal(t, "Code du travail", *resp.Code)
	assert.Equal(t, "Code du travail", search.calls[0].codeFilter)

	assert.Equal(t, ModeOnline, resp.Mode)
	assert.Equal(t, "2025-03-14T09:30:00.000000", resp.Timestamp)
	assert.Contains(t, resp.Answer, "### ⚖️ Conclusion : VALIDÉE")
	assert.Equal(t, "VALIDÉE", resp.Analysis.ValidationHypothesis)
	assert.Len(t, resp.Articles, 2)
	assert.Equal(t, "LEGIARTI000006901112", resp.Articles[0].ID)
	assert.Equal(t, "Code du travail", resp.Articles[0].Code)
	assert.Len(t, resp.QueryAnalysis.Keywords, 6)
	assert.Equal(t, resp.Analysis.HypothesisOriginale, resp.QueryAnalysis.Hypothesis)

	assert.Len(t, archive.saved, 2)
	assert.Equal(t, "Mon employeur peut-il me licencier ?", archive.keywords)
	assert.Equal(t, 1, archive.exports)
}

func TestAsk_ExplicitCodeWins(t *testing.T) {
	search := &fakeSearch{resp: travailResponse()}
	s := newTestAssistant(&scriptedLLM{hypothesis: goodHypothesis, synthesis: goodSynthesis}, search, nil)

	resp, err := s.Ask(context.Background(), "Mon employeur peut-il me licencier ?", strPtr(" Code civil "))

	require.NoError(t, err)
	assert.Equal(t, "Code civil", *resp.Code)
	assert.Equal(t, "Code civil", search.calls[0].codeFilter)
}

func TestAsk_NoCode(t *testing.T) {
	search := &fakeSearch{resp: travailResponse()}
	s := newTestAssistant(&scriptedLLM{hypothesis: goodHypothesis, synthesis: goodSynthesis}, search, nil)

	resp, err := s.Ask(context.Background(), "Quelle est la durée du congé parental ?", strPtr(""))

	require.NoError(t, err)
	assert.Nil(t, resp.Code)
	assert.Equal(t, "", search.calls[0].codeFilter)
}

func TestAsk_PersistenceFailuresAreNotReturned(t *testing.T) {
	tests := []struct {
		name        string
		archive     *fakeArchive
		wantExports int
	}{
		{name: "save fails", archive: &fakeArchive{saveErr: errors.New("disk full")}, wantExports: 0},
		{name: "export fails", archive: &fakeArchive{exportErr: errors.New("disk full")}, wantExports: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestAssistant(&scriptedLLM{hypothesis: goodHypothesis, synthesis: goodSynthesis}, &fakeSearch{resp: travailResponse()}, tt.archive)
			resp, err := s.Ask(context.Background(), "licenciement ?", nil)
			require.NoError(t, err)
			assert.NotNil(t, resp)
			assert.Equal(t, tt.wantExports, tt.archive.exports)
		})
	}
}

func TestAsk_NoArticlesSkipsArchive(t *testing.T) {
	archive := &fakeArchive{}
	s := newTestAssistant(&scriptedLLM{hypothesis: goodHypothesis}, &fakeSearch{}, archive)

	resp, err := s.Ask(context.Background(), "licenciement ?", nil)

	require.NoError(t, err)
	assert.Empty(t, resp.Articles)
	assert.NotNil(t, resp.Articles)
	assert.Equal(t, models.QualificationInsufficient, resp.Analysis.Qualification)
	assert.Empty(t, archive.saved)
	assert.Zero(t, archive.exports)
}

func TestAssistant_ModeAndCodes(t *testing.T) {
	offline := newTestAssistant(llm.OfflineClient{}, &fakeSearch{}, nil, PipelineWithOfflineMode(true))
	assert.Equal(t, ModeOffline, offline.Mode())

	online := NewAssistantService()
	assert.Equal(t, ModeOnline, online.Mode())

	codes := online.ListCodes()
	require.Len(t, codes, 12)
	assert.Equal(t, "Code civil", codes[0].Label)
}

func TestInferCode(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{question: "Mon CDD peut-il être rompu ?", want: "Code du travail"},
		{question: "Qui paie le préjudice subi ?", want: "Code civil"},
		{question: "Comment céder mes actions de la société ?", want: "Code de commerce"},
		{question: "Quelle peine pour ce délit ?", want: "Code pénal"},
		{question: "Combien de points sur mon permis ?", want: "Code de la route"},
		{question: "Quelle est la durée du congé parental ?", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, InferCode(tt.question))
		})
	}
}

func TestSerializeArticles(t *testing.T) {
	var articles []models.Article
	for i := 0; i < 10; i++ {
		articles = append(articles, models.Article{ID: "A", Title: "T", CodeName: "Code civil", Content: strings.Repeat("é", 1000), Source: "api_legifrance"})
	}

	out := SerializeArticles(articles)

	require.Len(t, out, 8)
	assert.Equal(t, 700, utf8.RuneCountInString(out[0].Excerpt))
	assert.Equal(t, "Code civil", out[0].Code)
	assert.Equal(t, "api_legifrance", out[0].Source)
	assert.NotNil(t, SerializeArticles(nil))
}
