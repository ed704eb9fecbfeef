package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient calls Gemini through the generative-ai-go SDK
type GeminiClient struct {
	client  *genai.Client
	timeout time.Duration
	logger  *zap.Logger
}

// GeminiConfig configures a GeminiClient
type GeminiConfig struct {
	APIKey  string
	// Timeout bounds one GenerateContent call. Zero leaves only the caller's deadline.
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewGeminiClient creates a GeminiClient. Close releases the underlying connection.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingModelKey
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiClient{client: client, timeout: cfg.Timeout, logger: logger}, nil
}

// Complete implements ChatModel
func (g *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := g.client.GenerativeModel(req.Model)
	model.SetTemperature(req.Temperature)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.SystemMessage != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.SystemMessage))
	}
	if req.ForceJSON {
		model.ResponseMIMEType = "application/json"
	}

	ctx, cancel := withCallTimeout(ctx, g.timeout)
	defer cancel()

	g.logger.Debug("gemini generate content", zap.String("model", req.Model), zap.Int("prompt_chars", len(req.Prompt)))
	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}
	return textFromGenerateResponse(resp)
}

// Close closes the SDK client
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// textFromGenerateResponse concatenates the text parts of the first candidate
func textFromGenerateResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}
