package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedModel struct {
	errs  []error
	calls int
}

func (s *scriptedModel) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return "ok", nil
}

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

type countingObserver map[string]int

func (c countingObserver) ObserveLLMAttempt(result string) { c[result]++ }

func TestRetryingClient_SucceedsFirstTry(t *testing.T) {
	inner := &scriptedModel{}
	sleeper := &recordingSleeper{}
	c := NewRetryingClient(inner, RetryWithSleeper(sleeper.sleep))

	text, err := c.Complete(context.Background(), CompletionRequest{Prompt: "q"})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 1, inner.calls)
	assert.Empty(t, sleeper.waits)
}

func TestRetryingClient_WaitTimings(t *testing.T) {
	tests := []struct {
		name  string
		errs  []error
		waits []time.Duration
	}{
		{
			name:  "rate limited then ok",
			errs:  []error{errors.New("status 429"), errors.New("Too Many Requests")},
			waits: []time.Duration{5 * time.Second, 10 * time.Second},
		},
		{
			name:  "generic errors then ok",
			errs:  []error{errors.New("timeout"), errors.New("connection reset")},
			waits: []time.Duration{time.Second, 2 * time.Second},
		},
		{
			name:  "mixed",
			errs:  []error{errors.New("timeout"), errors.New("429")},
			waits: []time.Duration{time.Second, 10 * time.Second},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &scriptedModel{errs: tt.errs}
			sleeper := &recordingSleeper{}
			c := NewRetryingClient(inner, RetryWithSleeper(sleeper.sleep))

			text, err := c.Complete(context.Background(), CompletionRequest{})
			require.NoError(t, err)
			assert.Equal(t, "ok", text)
			assert.Equal(t, 3, inner.calls)
			assert.Equal(t, tt.waits, sleeper.waits)
		})
	}
}

func TestRetryingClient_ExhaustsAttempts(t *testing.T) {
	last := errors.New("boom 3")
	inner := &scriptedModel{errs: []error{errors.New("boom 1"), errors.New("boom 2"), last}}
	sleeper := &recordingSleeper{}
	observer := countingObserver{}
	c := NewRetryingClient(inner, RetryWithSleeper(sleeper.sleep), RetryWithObserver(observer))

	_, err := c.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, last)
	assert.Contains(t, err.Error(), "après 3 tentatives")
	assert.Equal(t, 3, inner.calls)
	assert.Len(t, sleeper.waits, 2, "no wait after the final attempt")
	assert.Equal(t, 3, observer[AttemptError])
}

func TestRetryingClient_CustomRetries(t *testing.T) {
	inner := &scriptedModel{errs: []error{errors.New("a"), errors.New("b"), errors.New("c"), errors.New("d"), errors.New("e")}}
	sleeper := &recordingSleeper{}
	c := NewRetryingClient(inner, RetryWithRetries(0), RetryWithSleeper(sleeper.sleep))

	_, err := c.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Empty(t, sleeper.waits)
}

func TestRetryingClient_ContextCancelledDuringWait(t *testing.T) {
	inner := &scriptedModel{errs: []error{errors.New("429"), errors.New("429"), errors.New("429")}}
	ctx, cancel := context.WithCancel(context.Background())
	c := NewRetryingClient(inner, RetryWithSleeper(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	_, err := c.Complete(ctx, CompletionRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.calls)
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}

func TestIsRateLimited(t *testing.T) {
	assert.False(t, IsRateLimited(nil))
	assert.True(t, IsRateLimited(errors.New("HTTP 429")))
	assert.True(t, IsRateLimited(errors.New("TOO MANY REQUESTS")))
	assert.False(t, IsRateLimited(errors.New("503 service unavailable")))
}
