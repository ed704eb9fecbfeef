package app

import (
	"context"
	"testing"
	"time"

	"legalassist-backend/config"
	"legalassist-backend/legifrance"
	"legalassist-backend/llm"
	"legalassist-backend/observability"
	"legalassist-backend/service"
	"legalassist-backend/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		LegifranceClientID:     "id",
		LegifranceClientSecret: "secret",
		LLMProvider:            llm.ProviderMistral,
		LLMRetries:             2,
		Storage:                storage.StorageConfig{Type: storage.StorageTypeLocal, LocalPath: t.TempDir()},
	}
}

func TestBuild_Offline(t *testing.T) {
	cfg := testConfig(t)
	cfg.AllowOffline = true
	cfg.LLMTimeout = 45 * time.Second

	c, err := Build(context.Background(), cfg, nil, observability.NewMetrics(prometheus.NewRegistry()))

	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, 45*time.Second, c.Pipeline.ChatTimeout())
	assert.NotNil(t, c.Search)
	assert.NotNil(t, c.Archive)
	assert.True(t, c.Pipeline.Offline())
	assert.Equal(t, service.ModeOffline, c.Assistant.Mode())
}

func TestBuild_Online(t *testing.T) {
	cfg := testConfig(t)
	cfg.MistralAPIKey = "test-key"

	c, err := Build(context.Background(), cfg, nil, nil)

	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, service.ModeOnline, c.Assistant.Mode())
}

func TestBuild_Errors(t *testing.T) {
	t.Run("missing search credentials", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.LegifranceClientSecret = ""
		_, err := Build(context.Background(), cfg, nil, nil)
		assert.ErrorIs(t, err, legifrance.ErrMissingSearchCredentials)
	})

	t.Run("missing model key", func(t *testing.T) {
		cfg := testConfig(t)
		_, err := Build(context.Background(), cfg, nil, nil)
		assert.ErrorIs(t, err, llm.ErrMissingModelKey)
	})

	t.Run("unknown storage", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.AllowOffline = true
		cfg.Storage.Type = "ftp"
		_, err := Build(context.Background(), cfg, nil, nil)
		assert.ErrorContains(t, err, "unknown storage type")
	})
}
