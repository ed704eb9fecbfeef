package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiClient_MissingKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), GeminiConfig{Timeout: time.Second})
	assert.ErrorIs(t, err, ErrMissingModelKey)
}

func TestNewChatModel_GeminiReceivesTimeout(t *testing.T) {
	model, offline, closeFn, err := NewChatModel(context.Background(), ProviderConfig{
		Provider:     ProviderGemini,
		GeminiAPIKey: "test-key",
		Timeout:      42 * time.Second,
	})
	require.NoError(t, err)
	defer closeFn()

	assert.False(t, offline)
	g, ok := model.(*GeminiClient)
	require.True(t, ok)
	assert.Equal(t, 42*time.Second, g.timeout)
}

func TestWithCallTimeout(t *testing.T) {
	t.Run("positive timeout sets a deadline", func(t *testing.T) {
		ctx, cancel := withCallTimeout(context.Background(), time.Minute)
		defer cancel()

		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
	})

	t.Run("zero keeps the caller context", func(t *testing.T) {
		parent := context.Background()
		ctx, cancel := withCallTimeout(parent, 0)
		defer cancel()

		_, ok := ctx.Deadline()
		assert.False(t, ok)
		assert.Equal(t, parent, ctx)
	})

	t.Run("earlier caller deadline wins", func(t *testing.T) {
		parent, parentCancel := context.WithTimeout(context.Background(), time.Second)
		defer parentCancel()
		ctx, cancel := withCallTimeout(parent, time.Hour)
		defer cancel()

		parentDeadline, _ := parent.Deadline()
		deadline, _ := ctx.Deadline()
		assert.Equal(t, parentDeadline, deadline)
	})
}
