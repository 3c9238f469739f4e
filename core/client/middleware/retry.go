package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/core/client"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/ai"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/observability"
)

// RetryConfig tunes NewRetryMiddleware. Zero fields take the defaults shown.
type RetryConfig struct {
	MaxRetries     int           // retries after the first failure; 3
	InitialBackoff time.Duration // wait before the first retry; 1s
	MaxBackoff     time.Duration // cap for computed waits and Retry-After hints; 30s
	BackoffFactor  float64       // growth per retry; 2
	JitterFraction float64       // extra random wait, as a fraction of the backoff; 0.1

	// RetryableFunc decides whether err is worth another attempt.
	// Default: IsTransient.
	RetryableFunc func(error) bool
}

func (config RetryConfig) withDefaults() RetryConfig {
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = time.Second
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = 30 * time.Second
	}
	if config.BackoffFactor == 0 {
		config.BackoffFactor = 2
	}
	if config.JitterFraction == 0 {
		config.JitterFraction = 0.1
	}
	if config.RetryableFunc == nil {
		config.RetryableFunc = IsTransient
	}
	return config
}

// backoff is the wait before retry number attempt (0-indexed):
// InitialBackoff*BackoffFactor^attempt plus jitter, capped at MaxBackoff.
// A longer Retry-After from a rate-limited Gemini response wins, within the
// same cap.
func (config RetryConfig) backoff(attempt int, lastErr error) time.Duration {
	wait := float64(config.InitialBackoff) * math.Pow(config.BackoffFactor, float64(attempt))
	wait += wait * config.JitterFraction * rand.Float64() //nolint:gosec // non-cryptographic jitter

	var statusErr *ai.StatusError
	if errors.As(lastErr, &statusErr) && float64(statusErr.RetryAfter) > wait {
		wait = float64(statusErr.RetryAfter)
	}
	return time.Duration(min(wait, float64(config.MaxBackoff)))
}

// NewRetryMiddleware retries failed provider calls with backoff. For streams
// only errors returned before the stream is handed back are retried; once
// content is flowing the stream belongs to the caller, and GenerateStructured
// would rather repair a cut-off document than start over.
//
// On exhaustion the error wraps both ErrRetryExhausted and the last provider
// error.
func NewRetryMiddleware(config RetryConfig) client.MiddlewareConfig {
	config = config.withDefaults()

	return client.MiddlewareConfig{
		Send: func(next client.SendFunc) client.SendFunc {
			return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
				return retry(ctx, config, request, next)
			}
		},
		Stream: func(next client.StreamFunc) client.StreamFunc {
			return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
				return retry(ctx, config, request, next)
			}
		},
	}
}

func retry[R any](ctx context.Context, config RetryConfig, request ai.ChatRequest, call func(context.Context, ai.ChatRequest) (R, error)) (R, error) {
	var zero R

	result, err := call(ctx, request)
	for attempt := 0; err != nil && attempt < config.MaxRetries; attempt++ {
		if !config.RetryableFunc(err) {
			return zero, err
		}

		wait := config.backoff(attempt, err)
		if observer := observability.ObserverFromContext(ctx); observer != nil {
			observer.Debug(ctx, "Retrying provider call",
				observability.Int(observability.AttrLLMAttempt, attempt+1),
				observability.String(observability.AttrLLMModel, request.Model),
				observability.Duration(observability.AttrDuration, wait),
				observability.Error(err),
			)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}

		result, err = call(ctx, request)
	}

	switch {
	case err == nil:
		return result, nil
	case !config.RetryableFunc(err):
		return zero, err
	default:
		return zero, fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, config.MaxRetries, err)
	}
}
