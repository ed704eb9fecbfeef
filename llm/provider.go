package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Supported providers
const (
	ProviderMistral = "mistral"
	ProviderGemini  = "gemini"
)

// ProviderConfig selects and configures the chat model backend
type ProviderConfig struct {
	Provider      string
	MistralAPIKey string
	GeminiAPIKey  string
	AllowOffline  bool
	Timeout       time.Duration
	Logger        *zap.Logger
}

// NewChatModel builds the configured provider. Without an API key it falls back to OfflineClient
// when offline mode is allowed and fails with ErrMissingModelKey otherwise.
// The returned close function is never nil.
func NewChatModel(ctx context.Context, cfg ProviderConfig) (model ChatModel, offline bool, closeFn func() error, err error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	noop := func() error { return nil }

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderMistral
	}

	var key string
	switch provider {
	case ProviderMistral:
		key = cfg.MistralAPIKey
	case ProviderGemini:
		key = cfg.GeminiAPIKey
	default:
		return nil, false, noop, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}

	if key == "" {
		if !cfg.AllowOffline {
			return nil, false, noop, fmt.Errorf("%w for provider %s", ErrMissingModelKey, provider)
		}
		logger.Warn("no model API key, running in offline mode", zap.String("provider", provider))
		return OfflineClient{}, true, noop, nil
	}

	switch provider {
	case ProviderGemini:
		g, err := NewGeminiClient(ctx, GeminiConfig{APIKey: key, Timeout: cfg.Timeout, Logger: logger})
		if err != nil {
			return nil, false, noop, err
		}
		return g, false, g.Close, nil
	default:
		m, err := NewMistralClient(MistralConfig{APIKey: key, Timeout: cfg.Timeout, Logger: logger})
		if err != nil {
			return nil, false, noop, err
		}
		return m, false, noop, nil
	}
}
