package client

import (
	"context"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/core/parse"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/ai"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/observability"
)

// GenerateStructured asks for a JSON document and decodes it into a T.
//
// The response is streamed and collected. If the stream breaks after some
// content arrived, or the model hit its token limit, the partial text goes
// through parse.ParseWithFallbackContext like any other: a truncated document
// is repaired and a hopeless one yields fallback. An error is returned only
// when no content arrived at all, together with fallback and whatever
// response metadata exists.
//
//	paper, raw, err := client.GenerateStructured(ctx, c, prompt, ExamPaper{Title: "unavailable"})
func GenerateStructured[T any](ctx context.Context, c *Client, prompt string, fallback T, opts ...parse.FallbackOption) (T, *ai.ChatResponse, error) {
	if prompt == "" {
		return fallback, nil, errEmptyPrompt
	}
	ctx = c.withObserver(ctx)
	request := c.buildRequest(prompt, &ai.ResponseFormat{Type: "json_object"})

	stream, err := c.stream(ctx, request)
	if err != nil {
		return fallback, nil, err
	}

	response, streamErr := stream.Collect()
	if streamErr != nil {
		if response == nil || response.Content == "" {
			return fallback, response, streamErr
		}
		if observer := observability.ObserverFromContext(ctx); observer != nil {
			observer.Warn(ctx, "Stream interrupted, decoding partial content",
				observability.Int(observability.AttrRecoveryInputLength, len(response.Content)),
				observability.Error(streamErr),
			)
		}
	} else if response.Truncated() {
		if observer := observability.ObserverFromContext(ctx); observer != nil {
			observer.Info(ctx, "Response hit the output token limit",
				observability.String(observability.AttrLLMFinishReason, response.FinishReason),
				observability.Int(observability.AttrRecoveryInputLength, len(response.Content)),
			)
		}
	}

	return parse.ParseWithFallbackContext(ctx, response.Content, fallback, opts...), response, nil
}
