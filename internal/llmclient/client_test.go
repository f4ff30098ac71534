package llmclient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUnavailableAlwaysFails(t *testing.T) {
	text, ok := Unavailable{}.Generate(context.Background(), "hello", 10, time.Second)
	assert.False(t, ok)
	assert.Empty(t, text)
}

type stubClient struct {
	text string
}

func (s stubClient) Generate(ctx context.Context, prompt string, maxTokens int, timeout time.Duration) (string, bool) {
	return s.text, true
}

func TestRateLimitedDelegatesWhenAdmitted(t *testing.T) {
	rl := NewRateLimited(stubClient{text: "hi there"}, 100, 5)
	text, ok := rl.Generate(context.Background(), "prompt", 10, time.Second)
	assert.True(t, ok)
	assert.Equal(t, "hi there", text)
}

func TestRateLimitedFailsOnCanceledContext(t *testing.T) {
	rl := NewRateLimited(stubClient{text: "hi"}, 1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := rl.Generate(ctx, "prompt", 10, time.Second)
	assert.False(t, ok)
}
