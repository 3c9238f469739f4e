package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/ai"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/observability"
)

// maxResponseBodySize caps how much of a response body is read (10 MB).
const maxResponseBodySize int64 = 10 * 1024 * 1024

// HeaderOption is an extra request header, e.g. a provider-specific API key header.
type HeaderOption struct {
	Key   string
	Value string
}

// DoPostSync POSTs body as JSON and decodes a 2xx response into Output.
// Non-2xx responses are returned as *ai.StatusError so callers can classify
// them. Context errors are propagated as-is through the HTTP client.
func DoPostSync[Output any](ctx context.Context, client *http.Client, url string, body any, headers ...HeaderOption) (*http.Response, *Output, error) {
	request, requestSize, err := newJSONRequest(ctx, url, body, headers)
	if err != nil {
		return nil, nil, err
	}

	observer := observability.ObserverFromContext(ctx)
	start := time.Now()
	response, err := httpClientOrDefault(client).Do(request)
	elapsed := time.Since(start)
	if err != nil {
		if observer != nil {
			observer.Trace(ctx, "HTTP request failed",
				observability.String(observability.AttrHTTPURL, url),
				observability.Duration(observability.AttrHTTPDuration, elapsed),
				observability.Error(err),
			)
		}
		return response, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer CloseWithLog(response.Body)

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
	if err != nil {
		return response, nil, fmt.Errorf("error reading response body: %w", err)
	}

	if observer != nil {
		observer.Trace(ctx, "HTTP response received",
			observability.String(observability.AttrHTTPMethod, http.MethodPost),
			observability.String(observability.AttrHTTPURL, url),
			observability.Int(observability.AttrHTTPStatusCode, response.StatusCode),
			observability.Int(observability.AttrHTTPRequestBodySize, requestSize),
			observability.Int(observability.AttrHTTPResponseBodySize, len(responseBody)),
			observability.Duration(observability.AttrHTTPDuration, elapsed),
		)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return response, nil, ai.NewStatusError(response.StatusCode, string(responseBody), response.Header)
	}

	var output Output
	if err := json.Unmarshal(responseBody, &output); err != nil {
		return response, nil, fmt.Errorf("error unmarshaling response body (status %d): %w\nResponse preview: %s",
			response.StatusCode, err, observability.Preview(string(responseBody)))
	}
	return response, &output, nil
}

func newJSONRequest(ctx context.Context, url string, body any, headers []HeaderOption) (*http.Request, int, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("error marshaling body: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, 0, fmt.Errorf("error creating request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	for _, header := range headers {
		request.Header.Set(header.Key, header.Value)
	}
	return request, len(encoded), nil
}

func httpClientOrDefault(client *http.Client) *http.Client {
	if client == nil {
		return http.DefaultClient
	}
	return client
}

// CloseWithLog closes c and logs a failure instead of returning it.
func CloseWithLog(c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}
