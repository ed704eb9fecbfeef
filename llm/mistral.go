package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const MistralBaseURL = "https://api.mistral.ai/v1"

// MistralClient calls Mistral through its OpenAI-compatible chat completions endpoint
type MistralClient struct {
	client *openai.Client
	logger *zap.Logger
}

// MistralConfig configures a MistralClient
type MistralConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewMistralClient creates a MistralClient
func NewMistralClient(cfg MistralConfig) (*MistralClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingModelKey
	}
	oaCfg := openai.DefaultConfig(cfg.APIKey)
	oaCfg.BaseURL = MistralBaseURL
	if cfg.BaseURL != "" {
		oaCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		oaCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MistralClient{client: openai.NewClientWithConfig(oaCfg), logger: logger}, nil
}

// Complete implements ChatModel
func (m *MistralClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemMessage != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.SystemMessage})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.ForceJSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	m.logger.Debug("mistral chat completion", zap.String("model", req.Model), zap.Int("prompt_chars", len(req.Prompt)))
	resp, err := m.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("mistral chat completion failed: %w", err)
	}
	return textFromChatResponse(resp)
}

// textFromChatResponse reads the first choice of a chat completion
func textFromChatResponse(resp openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
