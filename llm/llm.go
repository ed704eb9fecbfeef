package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

var (
	ErrEmptyResponse   = errors.New("llm: empty response")
	ErrMissingModelKey = errors.New("llm: no model API key configured")
	ErrUnknownProvider = errors.New("llm: unknown provider")
)

// CompletionRequest describes one chat completion call
type CompletionRequest struct {
	Prompt        string
	SystemMessage string
	Model         string
	MaxTokens     int
	Temperature   float32
	ForceJSON     bool
}

// ChatModel returns the raw text produced by a chat model for one prompt
type ChatModel interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ChatModelFunc adapts a function to ChatModel
type ChatModelFunc func(ctx context.Context, req CompletionRequest) (string, error)

// Complete calls f
func (f ChatModelFunc) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return f(ctx, req)
}

// IsRateLimited reports whether err signals a 429 from the provider
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}

// withCallTimeout bounds ctx by timeout when it is positive
func withCallTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
