package legifrance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	DefaultTokenURL = "https://sandbox-oauth.piste.gouv.fr/api/oauth/token"
	DefaultBaseURL  = "https://sandbox-api.piste.gouv.fr/dila/legifrance/lf-engine-app"
	defaultTimeout  = 15 * time.Second
	tokenTimeout    = 10 * time.Second
	defaultCacheTTL = 10 * time.Minute
)

var (
	ErrMissingSearchCredentials = errors.New("legifrance: CLIENT_ID / CLIENT_SECRET missing")
	ErrSearchStatus             = errors.New("legifrance: unexpected status")
)

// Config holds the OAuth credentials and endpoints of the Légifrance API
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	BaseURL      string
	Timeout      time.Duration
}

// Client talks to the Légifrance search and consult endpoints
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      *cache.Cache
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Option is a functional option for Client
type Option func(*Client)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithCacheTTL sets how long search responses are kept in memory. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl <= 0 {
			c.cache = nil
			return
		}
		c.cache = cache.New(ttl, 2*ttl)
	}
}

// WithRateLimit caps outgoing API calls per second. The PISTE sandbox enforces a quota per application.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewClient creates a Légifrance client authenticated with the client-credentials flow.
// The token is fetched lazily on the first request and refreshed when it expires.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingSearchCredentials
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	oauthCfg := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       []string{"openid"},
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: tokenTimeout})
	httpClient := oauthCfg.Client(tokenCtx)
	httpClient.Timeout = cfg.Timeout

	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cache:      cache.New(defaultCacheTTL, 2*defaultCacheTTL),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type searchPayload struct {
	Fond      string         `json:"fond"`
	Recherche searchQuery    `json:"recherche"`
	Filtres   []searchFiltre `json:"filtres,omitempty"`
}

type searchQuery struct {
	Champs         []searchChamp `json:"champs"`
	PageNumber     int           `json:"pageNumber"`
	PageSize       int           `json:"pageSize"`
	Operateur      string        `json:"operateur"`
	Sort           string        `json:"sort"`
	TypePagination string        `json:"typePagination"`
	WithDetails    bool          `json:"withDetails"`
	WithContent    bool          `json:"withContent"`
}

type searchChamp struct {
	TypeChamp string          `json:"typeChamp"`
	Criteres  []searchCritere `json:"criteres"`
	Operateur string          `json:"operateur"`
}

type searchCritere struct {
	TypeRecherche string `json:"typeRecherche"`
	Valeur        string `json:"valeur"`
	Operateur     string `json:"operateur"`
}

type searchFiltre struct {
	Facette string   `json:"facette"`
	Valeurs []string `json:"valeurs"`
}

func newSearchPayload(keywords, codeFilter string, pageSize int) searchPayload {
	p := searchPayload{
		Fond: "CODE_ETAT",
		Recherche: searchQuery{
			Champs: []searchChamp{{
				TypeChamp: "ARTICLE",
				Criteres: []searchCritere{{
					TypeRecherche: "UN_DES_MOTS",
					Valeur:        keywords,
					Operateur:     "ET",
				}},
				Operateur: "ET",
			}},
			PageNumber:     1,
			PageSize:       pageSize,
			Operateur:      "ET",
			Sort:           "PERTINENCE",
			TypePagination: "ARTICLE",
			WithDetails:    true,
			WithContent:    true,
		},
	}
	if codeFilter != "" {
		p.Filtres = []searchFiltre{{Facette: "TEXT_NOM_CODE", Valeurs: []string{codeFilter}}}
	}
	return p
}

// Search runs a keyword search over codified articles, optionally restricted to one code
func (c *Client) Search(ctx context.Context, keywords, codeFilter string, pageSize int) (*SearchResponse, error) {
	cacheKey := fmt.Sprintf("%s|%s|%d", keywords, codeFilter, pageSize)
	if c.cache != nil {
		if cached, found := c.cache.Get(cacheKey); found {
			c.logger.Debug("search cache hit", zap.String("keywords", keywords))
			return cached.(*SearchResponse), nil
		}
	}

	var resp SearchResponse
	if err := c.post(ctx, "/search", newSearchPayload(keywords, codeFilter, pageSize), &resp); err != nil {
		return nil, err
	}

	c.logger.Info("search completed",
		zap.String("keywords", keywords),
		zap.String("code", codeFilter),
		zap.Int("results", len(resp.Results)),
	)
	if c.cache != nil {
		c.cache.Set(cacheKey, &resp, cache.DefaultExpiration)
	}
	return &resp, nil
}

// GetArticle fetches the full consult payload of one article
func (c *Client) GetArticle(ctx context.Context, articleID string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.post(ctx, "/consult/getArticle", map[string]string{"id": articleID}, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("legifrance rate limit: %w", err)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("legifrance %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("legifrance API error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncateBytes(respBody, 500)),
		)
		return fmt.Errorf("%w: %s %d - %s", ErrSearchStatus, path, resp.StatusCode, truncateBytes(respBody, 500))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func truncateBytes(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
