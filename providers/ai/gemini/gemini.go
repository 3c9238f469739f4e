package gemini

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/internal/utils"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/ai"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/observability"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"
	providerName   = "gemini"
	apiKeyHeader   = "x-goog-api-key" // #nosec G101 -- header name, not a credential
)

// GeminiProvider implements ai.Provider and ai.StreamProvider for Google's Gemini API.
type GeminiProvider struct {
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
}

var (
	_ ai.Provider       = (*GeminiProvider)(nil)
	_ ai.StreamProvider = (*GeminiProvider)(nil)
)

// New creates a Gemini provider with defaults from the environment:
//   - GEMINI_API_KEY: API key for authentication
//   - GEMINI_API_BASE_URL: base URL (optional, defaults to Google's API)
func New() *GeminiProvider {
	baseURL := os.Getenv("GEMINI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &GeminiProvider{
		apiKey:       os.Getenv("GEMINI_API_KEY"),
		baseURL:      baseURL,
		defaultModel: defaultModel,
		client:       &http.Client{},
	}
}

// WithAPIKey sets the default API key for the provider.
func (p *GeminiProvider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API.
func (p *GeminiProvider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = baseURL
	return p
}

// WithHttpClient sets a custom HTTP client.
func (p *GeminiProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// WithDefaultModel sets the model used when a request does not name one.
func (p *GeminiProvider) WithDefaultModel(model string) *GeminiProvider {
	p.defaultModel = model
	return p
}

// SendMessage sends a chat request to generateContent.
func (p *GeminiProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	observer := observability.ObserverFromContext(ctx)
	model := p.modelFor(request)

	if observer != nil {
		observer.Trace(ctx, "Gemini provider preparing request",
			observability.String(observability.AttrLLMProvider, providerName),
			observability.String(observability.AttrLLMEndpoint, p.baseURL),
			observability.String(observability.AttrLLMModel, model),
		)
	}

	apiKey, err := p.apiKeyFor(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, model)
	httpResponse, response, err := utils.DoPostSync[generateContentResponse](
		ctx,
		p.client,
		url,
		requestToGemini(request),
		utils.HeaderOption{Key: apiKeyHeader, Value: apiKey},
	)
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, fmt.Errorf("empty response from Gemini API: %s", httpResponse.Status)
	}

	result := geminiToGeneric(*response)
	if result.Model == "" {
		result.Model = model
	}

	if observer != nil {
		attrs := []observability.Attribute{
			observability.String(observability.AttrLLMModel, result.Model),
			observability.String(observability.AttrLLMFinishReason, result.FinishReason),
		}
		if result.Usage != nil {
			attrs = append(attrs, observability.Int(observability.AttrLLMTokensTotal, result.Usage.TotalTokens))
		}
		observer.Debug(ctx, "Gemini response received", attrs...)
	}

	return result, nil
}

// IsStopMessage reports whether the response is terminal. A truncated
// response is terminal too: the model stopped, only the caller can decide
// whether the partial content is usable.
func (p *GeminiProvider) IsStopMessage(message *ai.ChatResponse) bool {
	if message == nil {
		return true
	}
	switch message.FinishReason {
	case ai.FinishReasonStop, ai.FinishReasonLength, ai.FinishReasonContentFilter, ai.FinishReasonError:
		return true
	}
	return message.Content == ""
}

func (p *GeminiProvider) modelFor(request ai.ChatRequest) string {
	if request.Model != "" {
		return request.Model
	}
	return p.defaultModel
}

func (p *GeminiProvider) apiKeyFor(ctx context.Context) (string, error) {
	if apiKey := ai.APIKeyFromContext(ctx); apiKey != "" {
		return apiKey, nil
	}
	if p.apiKey == "" {
		return "", fmt.Errorf("gemini: %w (set GEMINI_API_KEY)", ai.ErrNoCredentials)
	}
	return p.apiKey, nil
}
