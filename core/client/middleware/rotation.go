package middleware

import (
	"context"
	"fmt"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/core/client"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/ai"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/observability"
)

// RotationConfig lists the credentials and models to try.
type RotationConfig struct {
	// Credentials are API keys tried in order. Empty means the provider's own
	// key is used.
	Credentials []string

	// Models are tried in order, each across every credential, so the
	// preferred model is exhausted before a cheaper one is used. Empty means
	// the request's model.
	Models []string

	// RotateFunc returns true when the next pair should be tried.
	// Default: IsRotatable.
	RotateFunc func(error) bool
}

type rotationPair struct {
	credentialIndex int
	credential      string
	model           string
}

func (config RotationConfig) pairs(requestModel string) []rotationPair {
	credentials := config.Credentials
	if len(credentials) == 0 {
		credentials = []string{""}
	}
	models := config.Models
	if len(models) == 0 {
		models = []string{requestModel}
	}

	pairs := make([]rotationPair, 0, len(models)*len(credentials))
	for _, model := range models {
		for i, credential := range credentials {
			pairs = append(pairs, rotationPair{credentialIndex: i, credential: credential, model: model})
		}
	}
	return pairs
}

func (pair rotationPair) apply(ctx context.Context, request ai.ChatRequest) (context.Context, ai.ChatRequest) {
	if pair.credential != "" {
		ctx = ai.ContextWithAPIKey(ctx, pair.credential)
	}
	request.Model = pair.model
	return ctx, request
}

// NewRotationMiddleware tries each (credential, model) pair once, in order,
// until one succeeds. A non-rotatable error stops immediately; running out
// of pairs returns an error wrapping ErrRetryExhausted and the last failure.
//
// For streams only errors raised before the first event rotate; once content
// is flowing the stream belongs to the caller.
func NewRotationMiddleware(config RotationConfig) client.MiddlewareConfig {
	if config.RotateFunc == nil {
		config.RotateFunc = IsRotatable
	}

	send := client.Middleware(func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			return rotate(ctx, config, request, func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
				return next(ctx, request)
			})
		}
	})

	stream := client.StreamMiddleware(func(next client.StreamFunc) client.StreamFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
			return rotate(ctx, config, request, func(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
				return next(ctx, request)
			})
		}
	})

	return client.MiddlewareConfig{Send: send, Stream: stream}
}

func rotate[R any](ctx context.Context, config RotationConfig, request ai.ChatRequest, call func(context.Context, ai.ChatRequest) (R, error)) (R, error) {
	var zero R
	var lastErr error
	pairs := config.pairs(request.Model)

	for attempt, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		pairCtx, pairRequest := pair.apply(ctx, request)
		result, err := call(pairCtx, pairRequest)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !config.RotateFunc(err) {
			return zero, err
		}

		if observer := observability.ObserverFromContext(ctx); observer != nil {
			observer.Warn(ctx, "Provider call failed, rotating credential/model",
				observability.Int(observability.AttrLLMAttempt, attempt+1),
				observability.Int(observability.AttrLLMCredentialIndex, pair.credentialIndex),
				observability.String(observability.AttrLLMModel, pair.model),
				observability.Error(err),
			)
		}
	}

	return zero, fmt.Errorf("%w after %d credential/model pairs: %w", ErrRetryExhausted, len(pairs), lastErr)
}
