package client

import (
	"context"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/ai"
)

type (
	// SendFunc is one hop of the send chain.
	SendFunc func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error)

	// StreamFunc is one hop of the stream chain.
	StreamFunc func(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error)

	Middleware       func(next SendFunc) SendFunc
	StreamMiddleware func(next StreamFunc) StreamFunc
)

// MiddlewareConfig is one entry of the chain. Send is required. When Stream
// is nil, streaming calls skip the entry.
type MiddlewareConfig struct {
	Send   Middleware
	Stream StreamMiddleware
}

// wrap applies layers so that layers[0] ends up outermost. Nil layers are
// skipped.
func wrap[F any](base F, layers []func(F) F) F {
	for i := len(layers) - 1; i >= 0; i-- {
		if layers[i] != nil {
			base = layers[i](base)
		}
	}
	return base
}

func buildSendChain(provider ai.Provider, middlewares []MiddlewareConfig) SendFunc {
	layers := make([]func(SendFunc) SendFunc, len(middlewares))
	for i, m := range middlewares {
		layers[i] = m.Send
	}
	return wrap(SendFunc(provider.SendMessage), layers)
}

// buildStreamChain ends in StreamMessage when the provider streams natively.
// Otherwise the complete response is replayed as a one-shot stream.
func buildStreamChain(provider ai.Provider, middlewares []MiddlewareConfig) StreamFunc {
	base := func(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
		response, err := provider.SendMessage(ctx, request)
		if err != nil {
			return nil, err
		}
		return ai.NewSingleEventStream(response), nil
	}
	if streamer, ok := provider.(ai.StreamProvider); ok {
		base = streamer.StreamMessage
	}

	layers := make([]func(StreamFunc) StreamFunc, len(middlewares))
	for i, m := range middlewares {
		layers[i] = m.Stream
	}
	return wrap(StreamFunc(base), layers)
}
