package middleware

import (
	"context"
	"time"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/core/client"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/ai"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/observability"
)

// LogLevel controls how much detail the logging middleware emits per request.
type LogLevel int

const (
	// LogLevelMinimal logs the model, duration and token counts.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds the message count and finish reason.
	LogLevelStandard

	// LogLevelVerbose adds previews of the prompt and the response.
	//
	// Do not use it in production: prompts and answers may contain student
	// data.
	LogLevelVerbose
)

// NewLoggingMiddleware logs every provider call through observer. A nil
// observer means the one on the call's context, and nothing is logged when
// neither exists. For streams the completion entry is written when the
// iterator finishes.
func NewLoggingMiddleware(observer observability.Provider, level LogLevel) client.MiddlewareConfig {
	return client.MiddlewareConfig{
		Send:   buildSendLogging(observer, level),
		Stream: buildStreamLogging(observer, level),
	}
}

func resolveObserver(ctx context.Context, observer observability.Provider) observability.Provider {
	if observer != nil {
		return observer
	}
	return observability.ObserverFromContext(ctx)
}

func buildSendLogging(configured observability.Provider, level LogLevel) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			observer := resolveObserver(ctx, configured)
			if observer == nil {
				return next(ctx, request)
			}

			observer.Info(ctx, "LLM send", requestAttrs(request, level)...)

			start := time.Now()
			response, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				observer.Error(ctx, "LLM send failed",
					observability.String(observability.AttrLLMModel, request.Model),
					observability.Duration(observability.AttrDuration, elapsed),
					observability.Error(err),
				)
				return nil, err
			}

			observer.Info(ctx, "LLM send completed", responseAttrs(response, elapsed, level)...)
			return response, nil
		}
	}
}

func buildStreamLogging(configured observability.Provider, level LogLevel) client.StreamMiddleware {
	return func(next client.StreamFunc) client.StreamFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
			observer := resolveObserver(ctx, configured)
			if observer == nil {
				return next(ctx, request)
			}

			observer.Info(ctx, "LLM stream", append(requestAttrs(request, level),
				observability.Bool(observability.AttrLLMStreaming, true))...)

			start := time.Now()
			stream, err := next(ctx, request)
			if err != nil {
				observer.Error(ctx, "LLM stream failed",
					observability.String(observability.AttrLLMModel, request.Model),
					observability.Duration(observability.AttrDuration, time.Since(start)),
					observability.Error(err),
				)
				return nil, err
			}

			return wrapStreamWithLogging(ctx, stream, observer, request.Model, level, start), nil
		}
	}
}

func wrapStreamWithLogging(
	ctx context.Context,
	stream *ai.ChatStream,
	observer observability.Provider,
	model string,
	level LogLevel,
	start time.Time,
) *ai.ChatStream {
	return ai.NewChatStream(func(yield func(ai.StreamEvent, error) bool) {
		response := &ai.ChatResponse{Model: model}
		received := 0

		for event, err := range stream.Iter() {
			if err != nil {
				observer.Error(ctx, "LLM stream interrupted",
					observability.String(observability.AttrLLMModel, model),
					observability.Duration(observability.AttrDuration, time.Since(start)),
					observability.Int(observability.AttrHTTPResponseBodySize, received),
					observability.Error(err),
				)
				yield(event, err)
				return
			}

			switch event.Type {
			case ai.StreamEventContent:
				received += len(event.Content)
				if level >= LogLevelVerbose {
					response.Content += event.Content
				}
			case ai.StreamEventUsage:
				response.Usage = event.Usage
			case ai.StreamEventDone:
				response.FinishReason = event.FinishReason
			}

			if !yield(event, nil) {
				observer.Info(ctx, "LLM stream abandoned",
					observability.String(observability.AttrLLMModel, model),
					observability.Duration(observability.AttrDuration, time.Since(start)),
				)
				return
			}
		}

		observer.Info(ctx, "LLM stream completed", responseAttrs(response, time.Since(start), level)...)
	})
}

func requestAttrs(request ai.ChatRequest, level LogLevel) []observability.Attribute {
	attrs := []observability.Attribute{
		observability.String(observability.AttrLLMModel, request.Model),
	}

	if level >= LogLevelStandard {
		attrs = append(attrs, observability.Int("llm.messages.count", len(request.Messages)))
	}

	if level >= LogLevelVerbose && len(request.Messages) > 0 {
		attrs = append(attrs, observability.String("llm.prompt.preview", observability.Preview(request.Messages[0].Content)))
	}

	return attrs
}

func responseAttrs(response *ai.ChatResponse, elapsed time.Duration, level LogLevel) []observability.Attribute {
	attrs := []observability.Attribute{
		observability.String(observability.AttrLLMModel, response.Model),
		observability.Duration(observability.AttrDuration, elapsed),
	}

	if response.Usage != nil {
		attrs = append(attrs, observability.Int(observability.AttrLLMTokensTotal, response.Usage.TotalTokens))
	}

	if level >= LogLevelStandard && response.FinishReason != "" {
		attrs = append(attrs, observability.String(observability.AttrLLMFinishReason, response.FinishReason))
	}

	if level >= LogLevelVerbose && response.Content != "" {
		attrs = append(attrs, observability.String("llm.response.preview", observability.Preview(response.Content)))
	}

	return attrs
}
