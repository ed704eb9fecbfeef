package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"legalassist-backend/models"
	"legalassist-backend/observability"
	"legalassist-backend/service"
	"legalassist-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAssistant struct {
	mode     string
	resp     *models.ChatResponse
	err      error
	question string
	code     *string
}

func (f *fakeAssistant) Ask(_ context.Context, question string, code *string) (*models.ChatResponse, error) {
	f.question = question
	f.code = code
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeAssistant) Mode() string { return f.mode }

type fakeDataset struct {
	body string
	err  error
}

func (f fakeDataset) DatasetCSV(context.Context) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.body)), nil
}

func sampleResponse() *models.ChatResponse {
	return &models.ChatResponse{
		Question: "Quels sont mes droits en cas de licenciement ?",
		Answer:   "Analyse juridique",
		Analysis: models.StructuredAnswer{
			ValidationHypothesis: "confirmée",
			Qualification:        "Licenciement pour motif personnel",
			TextesApplicables:    []string{"LEGIARTI000006901112__0"},
			Argumentation:        []string{"L'employeur doit convoquer le salarié [LEGIARTI000006901112__0]."},
			Synthese:             "Le licenciement doit respecter la procédure.",
		},
		Timestamp: "2025-03-14T09:30:00.000000",
		Mode:      service.ModeOnline,
	}
}

func newTestRouter(a *fakeAssistant, buildErr error, dataset DatasetSource, reg *prometheus.Registry) *gin.Engine {
	provider := func() (Assistant, error) {
		if buildErr != nil {
			return nil, buildErr
		}
		return a, nil
	}
	cfg := RouterConfig{
		Assistant:   NewAssistantHandler(provider, nil),
		CORSOrigins: []string{"http://localhost:5173"},
	}
	if dataset != nil {
		cfg.Export = NewExportHandler(dataset, nil)
	}
	if reg != nil {
		cfg.Metrics = observability.NewMetrics(reg)
		cfg.Gatherer = reg
	}
	return NewRouter(cfg)
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&fakeAssistant{mode: service.ModeOffline}, nil, nil, nil)

	w := doRequest(r, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, service.ModeOffline, body["mode"])
}

func TestHealth_AssistantUnavailable(t *testing.T) {
	r := newTestRouter(nil, errors.New("no model key"), nil, nil)

	w := doRequest(r, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "error", decodeBody(t, w)["status"])
}

func TestListCodes(t *testing.T) {
	r := newTestRouter(nil, errors.New("not needed"), nil, nil)

	w := doRequest(r, http.MethodGet, "/api/codes", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Codes []models.LegalCode `json:"codes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Codes)
}

func TestChat(t *testing.T) {
	a := &fakeAssistant{mode: service.ModeOnline, resp: sampleResponse()}
	r := newTestRouter(a, nil, nil, nil)

	w := doRequest(r, http.MethodPost, "/api/chat", `{"question":"Quels sont mes droits en cas de licenciement ?","code":"LEGITEXT000006072050"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Analyse juridique", resp.Answer)
	assert.Equal(t, "confirmée", resp.Analysis.ValidationHypothesis)
	assert.Equal(t, "Quels sont mes droits en cas de licenciement ?", a.question)
	require.NotNil(t, a.code)
	assert.Equal(t, "LEGITEXT000006072050", *a.code)
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		askErr     error
		buildErr   error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "blank question",
			body:       `{"question":"   "}`,
			wantStatus: http.StatusBadRequest,
			wantDetail: "La question ne peut pas être vide.",
		},
		{
			name:       "malformed body",
			body:       `{"question":`,
			wantStatus: http.StatusBadRequest,
			wantDetail: "Requête invalide.",
		},
		{
			name:       "empty question from service",
			body:       `{"question":"x"}`,
			askErr:     service.ErrEmptyQuestion,
			wantStatus: http.StatusBadRequest,
			wantDetail: "La question ne peut pas être vide.",
		},
		{
			name:       "internal failure",
			body:       `{"question":"x"}`,
			askErr:     errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Erreur interne pendant l'analyse",
		},
		{
			name:       "assistant cannot be built",
			body:       `{"question":"x"}`,
			buildErr:   errors.New("missing key"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Erreur interne pendant l'analyse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&fakeAssistant{err: tt.askErr}, tt.buildErr, nil, nil)

			w := doRequest(r, http.MethodPost, "/api/chat", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantDetail, decodeBody(t, w)["detail"])
		})
	}
}

func TestChatPDF(t *testing.T) {
	r := newTestRouter(&fakeAssistant{resp: sampleResponse()}, nil, nil, nil)

	w := doRequest(r, http.MethodPost, "/api/chat/pdf", `{"question":"Quels sont mes droits en cas de licenciement ?"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "analyse_juridique.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestGetArticlesCSV(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		r := newTestRouter(nil, nil, fakeDataset{body: "article_id,code_name\nA1,Code civil\n"}, nil)

		w := doRequest(r, http.MethodGet, "/api/exports/articles.csv", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Equal(t, "article_id,code_name\nA1,Code civil\n", w.Body.String())
	})

	t.Run("nothing stored", func(t *testing.T) {
		r := newTestRouter(nil, nil, fakeDataset{err: storage.ErrNotFound}, nil)

		w := doRequest(r, http.MethodGet, "/api/exports/articles.csv", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		r := newTestRouter(nil, nil, fakeDataset{err: errors.New("disk")}, nil)

		w := doRequest(r, http.MethodGet, "/api/exports/articles.csv", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("route absent without archive", func(t *testing.T) {
		r := newTestRouter(nil, nil, nil, nil)

		w := doRequest(r, http.MethodGet, "/api/exports/articles.csv", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCORS(t *testing.T) {
	r := newTestRouter(&fakeAssistant{mode: service.ModeOnline}, nil, nil, nil)

	t.Run("allowed origin preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(&fakeAssistant{mode: service.ModeOnline}, nil, nil, nil)

	w := doRequest(r, http.MethodGet, "/api/health", "")
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newTestRouter(&fakeAssistant{mode: service.ModeOnline}, nil, nil, reg)

	doRequest(r, http.MethodGet, "/api/health", "")
	w := doRequest(r, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `legalassist_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
}
