package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/internal/utils"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/ai"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/observability"
)

// StreamMessage calls streamGenerateContent with alt=sse. Each SSE event is a
// generateContentResponse whose parts carry only the text produced since the
// previous event.
//
// When the connection drops mid-response the iterator yields the error after
// every delta already received, so ChatStream.Collect returns the partial
// document for repair.
func (p *GeminiProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	observer := observability.ObserverFromContext(ctx)
	model := p.modelFor(request)

	if observer != nil {
		observer.Trace(ctx, "Gemini provider preparing streaming request",
			observability.String(observability.AttrLLMProvider, providerName),
			observability.String(observability.AttrLLMEndpoint, p.baseURL),
			observability.String(observability.AttrLLMModel, model),
			observability.Bool(observability.AttrLLMStreaming, true),
		)
	}

	apiKey, err := p.apiKeyFor(ctx)
	if err != nil {
		return nil, err
	}

	streamURL := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", p.baseURL, model)
	httpResponse, err := utils.DoPostStream(
		ctx,
		p.client,
		streamURL,
		requestToGemini(request),
		utils.HeaderOption{Key: apiKeyHeader, Value: apiKey},
	)
	if err != nil {
		return nil, err
	}

	sseScanner := utils.NewSSEScanner(httpResponse.Body)

	iteratorFunc := func(yield func(ai.StreamEvent, error) bool) {
		defer utils.CloseWithLog(httpResponse.Body)

		for {
			if ctx.Err() != nil {
				yield(ai.StreamEvent{}, ctx.Err())
				return
			}

			payload, sseErr := sseScanner.Next()
			if sseErr == io.EOF {
				return
			}
			if sseErr != nil {
				yield(ai.StreamEvent{}, fmt.Errorf("SSE read error: %w", sseErr))
				return
			}

			var chunk generateContentResponse
			if parseErr := json.Unmarshal([]byte(payload), &chunk); parseErr != nil {
				yield(ai.StreamEvent{}, fmt.Errorf("failed to parse Gemini streaming chunk: %w", parseErr))
				return
			}

			for _, event := range chunkToStreamEvents(&chunk) {
				if !yield(event, nil) {
					return
				}
			}
		}
	}

	return ai.NewChatStream(iteratorFunc), nil
}

// chunkToStreamEvents converts one streamed response into events, in the
// order content, reasoning, usage, done.
func chunkToStreamEvents(chunk *generateContentResponse) []ai.StreamEvent {
	var events []ai.StreamEvent

	if len(chunk.Candidates) == 0 {
		if chunk.PromptFeedback != nil && chunk.PromptFeedback.BlockReason != "" {
			events = append(events, ai.StreamEvent{Type: ai.StreamEventDone, FinishReason: ai.FinishReasonContentFilter})
		}
		return events
	}

	candidate := chunk.Candidates[0]
	text, reasoning := splitParts(candidate.Content)
	if text != "" {
		events = append(events, ai.StreamEvent{Type: ai.StreamEventContent, Content: text})
	}
	if reasoning != "" {
		events = append(events, ai.StreamEvent{Type: ai.StreamEventReasoning, Reasoning: reasoning})
	}
	if usage := mapUsage(chunk.UsageMetadata); usage != nil {
		events = append(events, ai.StreamEvent{Type: ai.StreamEventUsage, Usage: usage})
	}
	if candidate.FinishReason != "" {
		events = append(events, ai.StreamEvent{
			Type:         ai.StreamEventDone,
			FinishReason: mapFinishReason(candidate.FinishReason),
		})
	}
	return events
}
