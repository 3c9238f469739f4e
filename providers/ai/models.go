package ai

import "encoding/json"

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest represents a request to send a chat message
type ChatRequest struct {
	Model            string            `json:"model,omitempty"`             // Model name; providers fall back to their default
	Messages         []Message         `json:"messages"`                    // Conversation without the system prompt
	SystemPrompt     string            `json:"system_prompt,omitempty"`     // Optional system prompt
	ResponseFormat   *ResponseFormat   `json:"response_format,omitempty"`   // Optional response format
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"` // Optional generation configuration
}

// Message represents a single message in a conversation
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`
}

type GenerationConfig struct {
	Temperature     float32 `json:"temperature,omitempty"`       // Sampling temperature [0..2]
	TopP            float32 `json:"top_p,omitempty"`             // Nucleus sampling [0..1]
	MaxOutputTokens int     `json:"max_output_tokens,omitempty"` // Output token limit; hitting it yields a truncated response
}

type ResponseFormat struct {
	Type   string          `json:"type,omitempty"`   // "text" or "json_object"; a schema forces json_object
	Schema json.RawMessage `json:"schema,omitempty"` // Optional JSON schema for structured output
}

// WantsJSON reports whether the caller asked for a JSON document.
func (f *ResponseFormat) WantsJSON() bool {
	return f != nil && (f.Type == "json_object" || len(f.Schema) > 0)
}

/*
	##### PROVIDER OUTPUT #####
*/

type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
	ReasoningTokens  int `json:"reasoning_tokens,omitempty"`
}

// ChatResponse represents the response from a chat completion
type ChatResponse struct {
	Id           string `json:"id"`
	Model        string `json:"model"`
	Content      string `json:"content"`
	Reasoning    string `json:"reasoning,omitempty"`
	Refusal      string `json:"refusal,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
}

// Truncated reports whether generation stopped at the output token limit.
func (r *ChatResponse) Truncated() bool {
	return r != nil && r.FinishReason == FinishReasonLength
}

/*
	##### ENUMS #####
*/

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Normalized finish reasons.
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonContentFilter = "content_filter"
	FinishReasonError         = "error"
)
