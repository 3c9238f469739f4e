package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/ai"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/observability"
)

var errEmptyPrompt = errors.New("client: prompt must not be empty")

// Client sends prompts through a provider and its middleware chain. It holds
// no conversation state and is safe for concurrent use once built.
type Client struct {
	provider        ai.Provider
	observer        observability.Provider
	systemPrompt    string
	model           string
	maxOutputTokens int
	send            SendFunc
	stream          StreamFunc
}

// ClientOptions is filled in by the With* option functions.
type ClientOptions struct {
	Observer        observability.Provider
	Middlewares     []MiddlewareConfig
	SystemPrompt    string
	Model           string
	MaxOutputTokens int
}

// WithObserver attaches an observability provider. It is placed on the
// context of every call, so providers, middleware and parse reports share it.
func WithObserver(observer observability.Provider) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Observer = observer
	}
}

// WithMiddleware appends middlewares; the first one given is the outermost.
func WithMiddleware(middlewares ...MiddlewareConfig) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Middlewares = append(o.Middlewares, middlewares...)
	}
}

// WithSystemPrompt sets the system prompt sent with every request.
func WithSystemPrompt(prompt string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.SystemPrompt = prompt
	}
}

// WithModel sets the model requested when a middleware does not choose one.
func WithModel(model string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Model = model
	}
}

// WithMaxOutputTokens caps the response length.
func WithMaxOutputTokens(tokens int) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.MaxOutputTokens = tokens
	}
}

// New builds a Client around provider.
func New(provider ai.Provider, opts ...func(*ClientOptions)) (*Client, error) {
	if provider == nil {
		return nil, errors.New("client: provider is nil")
	}

	options := &ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	for i, middleware := range options.Middlewares {
		if middleware.Send == nil {
			return nil, fmt.Errorf("client: middleware at index %d has a nil Send function", i)
		}
	}

	return &Client{
		provider:        provider,
		observer:        options.Observer,
		systemPrompt:    options.SystemPrompt,
		model:           options.Model,
		maxOutputTokens: options.MaxOutputTokens,
		send:            buildSendChain(provider, options.Middlewares),
		stream:          buildStreamChain(provider, options.Middlewares),
	}, nil
}

// Observer returns the configured observer, or nil.
func (c *Client) Observer() observability.Provider {
	return c.observer
}

// Generate sends prompt and returns the completed response.
func (c *Client) Generate(ctx context.Context, prompt string) (*ai.ChatResponse, error) {
	if prompt == "" {
		return nil, errEmptyPrompt
	}
	return c.send(c.withObserver(ctx), c.buildRequest(prompt, nil))
}

// Stream sends prompt and returns a stream of deltas. The caller must
// consume the stream (see ai.ChatStream).
func (c *Client) Stream(ctx context.Context, prompt string) (*ai.ChatStream, error) {
	if prompt == "" {
		return nil, errEmptyPrompt
	}
	return c.stream(c.withObserver(ctx), c.buildRequest(prompt, nil))
}

func (c *Client) buildRequest(prompt string, format *ai.ResponseFormat) ai.ChatRequest {
	request := ai.ChatRequest{
		Model:          c.model,
		SystemPrompt:   c.systemPrompt,
		Messages:       []ai.Message{{Role: ai.RoleUser, Content: prompt}},
		ResponseFormat: format,
	}
	if c.maxOutputTokens > 0 {
		request.GenerationConfig = &ai.GenerationConfig{MaxOutputTokens: c.maxOutputTokens}
	}
	return request
}

// withObserver keeps an observer already on ctx, such as a request-scoped
// one set by the HTTP server.
func (c *Client) withObserver(ctx context.Context) context.Context {
	if c.observer == nil || observability.ObserverFromContext(ctx) != nil {
		return ctx
	}
	return observability.ContextWithObserver(ctx, c.observer)
}
