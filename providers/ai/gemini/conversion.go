package gemini

import (
	"fmt"
	"strings"
	"time"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/ai"
)

// requestToGemini converts a generic ChatRequest into Gemini's format.
func requestToGemini(request ai.ChatRequest) generateContentRequest {
	geminiRequest := generateContentRequest{
		Contents:         buildContents(request.Messages),
		GenerationConfig: buildGenerationConfig(request.GenerationConfig, request.ResponseFormat),
	}

	if request.SystemPrompt != "" {
		geminiRequest.SystemInstruction = &systemInstruction{
			Parts: []part{{Text: request.SystemPrompt}},
		}
	}

	return geminiRequest
}

// buildContents maps roles onto Gemini's user/model pair. System messages in
// the conversation are sent as user turns, since Gemini only accepts a
// system prompt through systemInstruction.
func buildContents(messages []ai.Message) []content {
	contents := make([]content, 0, len(messages))
	for _, message := range messages {
		role := "user"
		if message.Role == ai.RoleAssistant {
			role = "model"
		}
		contents = append(contents, content{
			Role:  role,
			Parts: []part{{Text: message.Content}},
		})
	}
	return contents
}

func buildGenerationConfig(cfg *ai.GenerationConfig, responseFormat *ai.ResponseFormat) *generationConfig {
	if cfg == nil && !responseFormat.WantsJSON() {
		return nil
	}

	geminiConfig := &generationConfig{}
	if cfg != nil {
		if cfg.Temperature != 0 {
			temperature := float64(cfg.Temperature)
			geminiConfig.Temperature = &temperature
		}
		if cfg.TopP != 0 {
			topP := float64(cfg.TopP)
			geminiConfig.TopP = &topP
		}
		if cfg.MaxOutputTokens > 0 {
			maxTokens := cfg.MaxOutputTokens
			geminiConfig.MaxOutputTokens = &maxTokens
		}
	}

	if responseFormat.WantsJSON() {
		geminiConfig.ResponseMimeType = "application/json"
		geminiConfig.ResponseSchema = responseFormat.Schema
	}

	return geminiConfig
}

// geminiToGeneric converts a Gemini response into a generic ChatResponse.
func geminiToGeneric(response generateContentResponse) *ai.ChatResponse {
	result := &ai.ChatResponse{
		Id:    response.ResponseID,
		Model: response.ModelVersion,
		Usage: mapUsage(response.UsageMetadata),
	}
	if result.Id == "" {
		result.Id = fmt.Sprintf("gemini-%d", time.Now().UnixNano())
	}

	if len(response.Candidates) == 0 {
		result.FinishReason = ai.FinishReasonError
		if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
			result.FinishReason = ai.FinishReasonContentFilter
			result.Refusal = response.PromptFeedback.BlockReason
		}
		return result
	}

	candidate := response.Candidates[0]
	result.FinishReason = mapFinishReason(candidate.FinishReason)
	result.Content, result.Reasoning = splitParts(candidate.Content)
	return result
}

// splitParts separates answer text from thinking summaries.
func splitParts(c *content) (text, reasoning string) {
	if c == nil {
		return "", ""
	}
	var textParts, reasoningParts []string
	for _, p := range c.Parts {
		if p.Text == "" {
			continue
		}
		if p.Thought {
			reasoningParts = append(reasoningParts, p.Text)
		} else {
			textParts = append(textParts, p.Text)
		}
	}
	return strings.Join(textParts, ""), strings.Join(reasoningParts, "")
}

func mapUsage(usage *usageMetadata) *ai.Usage {
	if usage == nil {
		return nil
	}
	return &ai.Usage{
		PromptTokens:     usage.PromptTokenCount,
		CompletionTokens: usage.CandidatesTokenCount,
		TotalTokens:      usage.TotalTokenCount,
		ReasoningTokens:  usage.ThoughtsTokenCount,
	}
}

// mapFinishReason normalizes Gemini's finish reasons. MAX_TOKENS maps to
// "length", which is how callers learn the content was cut off.
func mapFinishReason(geminiReason string) string {
	switch geminiReason {
	case "MAX_TOKENS":
		return ai.FinishReasonLength
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII":
		return ai.FinishReasonContentFilter
	case "MALFORMED_FUNCTION_CALL":
		return ai.FinishReasonError
	default:
		return ai.FinishReasonStop
	}
}
