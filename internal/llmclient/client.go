// Package llmclient defines the external language-model collaborator
// contract used by the learned-fallback emission path (spec.md §6, §9):
// text in, text out, with an explicit ok flag so the caller can degrade to
// a minimal-holding emission on failure or timeout without an error
// return obscuring that distinction.
package llmclient

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Client is the text-in/text-out contract. Implementations must honor
// ctx cancellation and must never panic: a failing collaborator reports
// ok=false, it does not return an error that could propagate past the
// emission path (spec.md §7: ExternalUnavailable degrades, never surfaces).
type Client interface {
	Generate(ctx context.Context, prompt string, maxTokens int, timeout time.Duration) (text string, ok bool)
}

// RateLimited wraps a Client with a token-bucket limiter, following the
// pattern macawi-ai-Strigoi applies to its probe/telemetry call sites via
// golang.org/x/time/rate: bound the rate of outbound collaborator calls
// independent of per-call timeouts.
type RateLimited struct {
	inner   Client
	limiter *rate.Limiter
}

// NewRateLimited wraps inner with a limiter allowing burst calls per
// second at the given rate.
func NewRateLimited(inner Client, callsPerSecond float64, burst int) *RateLimited {
	return &RateLimited{inner: inner, limiter: rate.NewLimiter(rate.Limit(callsPerSecond), burst)}
}

// Generate waits for rate-limiter admission (bounded by the caller's ctx)
// then delegates to the inner client. A limiter-wait failure degrades to
// ok=false rather than blocking indefinitely.
func (r *RateLimited) Generate(ctx context.Context, prompt string, maxTokens int, timeout time.Duration) (string, bool) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", false
	}
	return r.inner.Generate(ctx, prompt, maxTokens, timeout)
}

// Unavailable is a Client that always reports failure, used when no
// learned-fallback collaborator is configured.
type Unavailable struct{}

// Generate always returns ok=false.
func (Unavailable) Generate(ctx context.Context, prompt string, maxTokens int, timeout time.Duration) (string, bool) {
	return "", false
}
