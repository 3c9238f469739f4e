package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/core/client"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/ai"
)

// ErrTimeout marks a call cut short by NewTimeoutMiddleware. It also matches
// context.DeadlineExceeded.
var ErrTimeout = errors.New("llm call timed out")

// NewTimeoutMiddleware bounds every provider call by timeout. For streams the
// deadline covers the whole stream, so a model that keeps writing past it is
// cut off and GenerateStructured decodes what arrived. A shorter deadline on
// the caller's context still wins, and a timeout <= 0 disables the middleware.
func NewTimeoutMiddleware(timeout time.Duration) client.MiddlewareConfig {
	return client.MiddlewareConfig{
		Send: func(next client.SendFunc) client.SendFunc {
			if timeout <= 0 {
				return next
			}
			return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
				ctx, cancel := context.WithTimeoutCause(ctx, timeout, ErrTimeout)
				defer cancel()

				response, err := next(ctx, request)
				return response, timeoutError(ctx, timeout, err)
			}
		},
		Stream: func(next client.StreamFunc) client.StreamFunc {
			if timeout <= 0 {
				return next
			}
			return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
				ctx, cancel := context.WithTimeoutCause(ctx, timeout, ErrTimeout)

				stream, err := next(ctx, request)
				if err != nil {
					err = timeoutError(ctx, timeout, err)
					cancel()
					return nil, err
				}
				return releaseOnEnd(ctx, stream, timeout, cancel), nil
			}
		},
	}
}

// timeoutError tags err when this middleware's own deadline fired, leaving
// caller cancellations and provider errors untouched.
func timeoutError(ctx context.Context, timeout time.Duration, err error) error {
	if err == nil || !errors.Is(context.Cause(ctx), ErrTimeout) {
		return err
	}
	return fmt.Errorf("%w after %s: %w", ErrTimeout, timeout, err)
}

// releaseOnEnd cancels the call context once the stream is done, fails or is
// abandoned by the caller.
func releaseOnEnd(ctx context.Context, stream *ai.ChatStream, timeout time.Duration, cancel context.CancelFunc) *ai.ChatStream {
	return ai.NewChatStream(func(yield func(ai.StreamEvent, error) bool) {
		defer cancel()

		for event, err := range stream.Iter() {
			if err != nil {
				yield(event, timeoutError(ctx, timeout, err))
				return
			}
			if !yield(event, nil) || event.Type == ai.StreamEventDone {
				return
			}
		}
	})
}
