package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shivamm1101/doc-ai/internal/core"
	"github.com/Shivamm1101/doc-ai/internal/logger"
)

// ErrRetryExhausted matches every RetryExhaustedError via errors.Is.
var ErrRetryExhausted = errors.New("llm: retry attempts exhausted")

// RetryExhaustedError is returned when every attempt failed with a transient error.
type RetryExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("llm: gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() []error {
	return []error{ErrRetryExhausted, e.Last}
}

type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 6, BaseDelay: time.Second, MaxDelay: 15 * time.Second}
}

// Backoff is the wait after the given zero-based attempt: BaseDelay doubled
// per attempt, capped at MaxDelay.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

type GatewayOption func(*Gateway)

func WithSleeper(s Sleeper) GatewayOption {
	return func(g *Gateway) { g.sleep = s }
}

func WithSystemPrompt(prompt string) GatewayOption {
	return func(g *Gateway) { g.system = prompt }
}

var (
	_ core.Completer   = (*Gateway)(nil)
	_ core.LLMProvider = (*Gateway)(nil)
)

// Gateway wraps an LLMProvider with the transient-error retry policy. It is
// safe for concurrent use when the provider is.
type Gateway struct {
	provider core.LLMProvider
	policy   RetryPolicy
	system   string
	sleep    Sleeper
	log      *logger.Logger
}

func NewGateway(provider core.LLMProvider, policy RetryPolicy, log *logger.Logger, opts ...GatewayOption) *Gateway {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	g := &Gateway{
		provider: provider,
		policy:   policy,
		sleep:    sleepContext,
		log:      log.With("component", "llm-gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Complete sends prompt with the gateway's default system prompt.
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	return g.Generate(ctx, g.system, prompt)
}

// Generate calls the provider, retrying transient failures. Non-transient
// errors are returned on first sight; there is no wait after the final attempt.
func (g *Gateway) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var last error
	for attempt := 0; attempt < g.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		out, err := g.provider.Generate(ctx, systemPrompt, userPrompt)
		if err == nil {
			return out, nil
		}
		if !IsTransient(err) {
			return "", err
		}
		last = err

		if attempt == g.policy.MaxAttempts-1 {
			break
		}
		wait := g.policy.Backoff(attempt)
		g.log.Warn("transient llm error, backing off",
			"attempt", attempt+1, "max_attempts", g.policy.MaxAttempts, "wait", wait, "err", err)
		if err := g.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", &RetryExhaustedError{Attempts: g.policy.MaxAttempts, Last: last}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
