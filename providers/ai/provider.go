package ai

import (
	"context"
	"net/http"
)

// StreamProvider is an optional interface for providers that can stream
// responses over SSE. Callers detect support with a type assertion and fall
// back to SendMessage otherwise.
type StreamProvider interface {
	Provider
	// StreamMessage returns a ChatStream yielding deltas as they arrive.
	// Pre-stream errors (auth, bad request, network) are returned directly;
	// mid-stream errors are yielded through the iterator.
	StreamMessage(ctx context.Context, request ChatRequest) (*ChatStream, error)
}

// Provider is implemented by every generative-AI backend.
type Provider interface {
	// SendMessage sends a chat request and returns the completed response.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// IsStopMessage reports whether the response is terminal.
	IsStopMessage(message *ChatResponse) bool

	// WithAPIKey sets the default API key. A key attached to the request
	// context with ContextWithAPIKey takes precedence.
	WithAPIKey(apiKey string) Provider

	// WithBaseURL overrides the default base URL for API requests.
	WithBaseURL(baseURL string) Provider

	// WithHttpClient sets the HTTP client used for outbound requests.
	WithHttpClient(httpClient *http.Client) Provider
}

type apiKeyContextKey struct{}

// ContextWithAPIKey returns a context that makes providers authenticate with
// apiKey for this call only. Credential rotation uses it to switch keys per
// attempt without mutating the shared provider.
func ContextWithAPIKey(ctx context.Context, apiKey string) context.Context {
	return context.WithValue(ctx, apiKeyContextKey{}, apiKey)
}

// APIKeyFromContext returns the per-call API key, or "" when none is set.
func APIKeyFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	apiKey, _ := ctx.Value(apiKeyContextKey{}).(string)
	return apiKey
}
