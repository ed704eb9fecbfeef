package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"legalassist-backend/legifrance"
	"legalassist-backend/storage"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings read from the environment
type Config struct {
	Port string

	LegifranceClientID     string
	LegifranceClientSecret string
	LegifranceTokenURL     string
	LegifranceBaseURL      string
	SearchRateLimit        float64
	SearchCacheTTL         time.Duration

	LLMProvider     string
	MistralAPIKey   string
	GeminiAPIKey    string
	ChatModel       string
	HypothesisModel string
	LLMRetries      int
	LLMTimeout      time.Duration
	AllowOffline    bool

	Storage     storage.StorageConfig
	DatabaseURL string

	LogFile       string
	LogProduction bool
	CORSOrigins   []string
}

// LoadDotEnv loads .env from the working directory, then from the project root when run from cmd/<name>/
func LoadDotEnv() bool {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			return false
		}
	}
	return true
}

// Load reads the configuration from .env files and the environment
func Load() (*Config, error) {
	LoadDotEnv()
	return FromEnv()
}

// FromEnv reads the configuration from the environment only
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:                   getEnv("PORT", "8080"),
		LegifranceClientID:     os.Getenv("CLIENT_ID"),
		LegifranceClientSecret: os.Getenv("CLIENT_SECRET"),
		LegifranceTokenURL:     os.Getenv("LEGIFRANCE_TOKEN_URL"),
		LegifranceBaseURL:      os.Getenv("LEGIFRANCE_BASE_URL"),
		LLMProvider:            strings.ToLower(getEnv("LLM_PROVIDER", "mistral")),
		MistralAPIKey:          os.Getenv("MISTRAL_API_KEY"),
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
		ChatModel:              os.Getenv("MODEL_CHAT"),
		HypothesisModel:        os.Getenv("MODEL_HYPOTHESIS"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		LogFile:                os.Getenv("LOG_FILE"),
		CORSOrigins:            splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
	}

	var err error
	if cfg.SearchRateLimit, err = getFloat("LEGIFRANCE_RATE_LIMIT", 0); err != nil {
		return nil, err
	}
	if cfg.SearchCacheTTL, err = getDuration("LEGIFRANCE_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.LLMRetries, err = getInt("LLM_RETRIES", 2); err != nil {
		return nil, err
	}
	if cfg.LLMRetries < 0 {
		return nil, fmt.Errorf("LLM_RETRIES must not be negative, got %d", cfg.LLMRetries)
	}
	if cfg.LLMTimeout, err = getDuration("LLM_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.AllowOffline, err = getBool("ALLOW_OFFLINE", false); err != nil {
		return nil, err
	}
	if cfg.LogProduction, err = getBool("LOG_PRODUCTION", false); err != nil {
		return nil, err
	}
	if cfg.Storage, err = storage.ConfigFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateSearch checks that Légifrance credentials are present
func (c *Config) ValidateSearch() error {
	if c.LegifranceClientID == "" || c.LegifranceClientSecret == "" {
		return legifrance.ErrMissingSearchCredentials
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
