package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultRetries = 2

	rateLimitWait = 5 * time.Second
	errorWait     = time.Second
)

// Attempt outcomes reported to an AttemptObserver
const (
	AttemptOK          = "ok"
	AttemptRateLimited = "rate_limited"
	AttemptError       = "error"
)

// AttemptObserver is told the outcome of every model call attempt
type AttemptObserver interface {
	ObserveLLMAttempt(result string)
}

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// RetryingClient retries a ChatModel with a linear wait.
// A rate-limited attempt n waits 5n seconds, any other failure waits n seconds.
type RetryingClient struct {
	inner    ChatModel
	retries  int
	sleep    Sleeper
	observer AttemptObserver
	logger   *zap.Logger
}

// RetryOption is a functional option for RetryingClient
type RetryOption func(*RetryingClient)

// RetryWithRetries sets the number of extra attempts after the first one
func RetryWithRetries(n int) RetryOption {
	return func(c *RetryingClient) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// RetryWithSleeper replaces the wait between attempts
func RetryWithSleeper(s Sleeper) RetryOption {
	return func(c *RetryingClient) {
		c.sleep = s
	}
}

// RetryWithObserver sets the attempt observer
func RetryWithObserver(o AttemptObserver) RetryOption {
	return func(c *RetryingClient) {
		c.observer = o
	}
}

// RetryWithLogger sets the logger
func RetryWithLogger(logger *zap.Logger) RetryOption {
	return func(c *RetryingClient) {
		c.logger = logger
	}
}

// NewRetryingClient wraps inner
func NewRetryingClient(inner ChatModel, opts ...RetryOption) *RetryingClient {
	c := &RetryingClient{
		inner:   inner,
		retries: DefaultRetries,
		sleep:   sleepContext,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete calls the wrapped model until it succeeds or the attempts are exhausted
func (c *RetryingClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	attempts := c.retries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := c.inner.Complete(ctx, req)
		if err == nil {
			c.observe(AttemptOK)
			return text, nil
		}
		lastErr = err

		wait := time.Duration(attempt) * errorWait
		result := AttemptError
		if IsRateLimited(err) {
			wait = time.Duration(attempt) * rateLimitWait
			result = AttemptRateLimited
		}
		c.observe(result)

		if attempt == attempts {
			break
		}
		c.logger.Warn("model call failed, retrying",
			zap.Int("attempt", attempt),
			zap.String("model", req.Model),
			zap.String("result", result),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		if err := c.sleep(ctx, wait); err != nil {
			return "", err
		}
	}

	c.logger.Error("model call failed", zap.Int("attempts", attempts), zap.Error(lastErr))
	return "", fmt.Errorf("échec appel modèle après %d tentatives: %w", attempts, lastErr)
}

func (c *RetryingClient) observe(result string) {
	if c.observer != nil {
		c.observer.ObserveLLMAttempt(result)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
