package utils

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/ai"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/observability"
)

// DoPostStream POSTs body as JSON and returns the response with its body
// still open for SSE reading; the caller must close it. Non-2xx responses are
// drained, closed and returned as *ai.StatusError.
func DoPostStream(ctx context.Context, client *http.Client, url string, body any, headers ...HeaderOption) (*http.Response, error) {
	request, requestSize, err := newJSONRequest(ctx, url, body, headers)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "text/event-stream")

	observer := observability.ObserverFromContext(ctx)
	start := time.Now()
	response, err := httpClientOrDefault(client).Do(request)
	if err != nil {
		return response, fmt.Errorf("error sending stream request: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		defer CloseWithLog(response.Body)
		errorBody, readErr := io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
		if readErr != nil {
			return response, ai.NewStatusError(response.StatusCode, fmt.Sprintf("(failed to read body: %v)", readErr), response.Header)
		}
		return response, ai.NewStatusError(response.StatusCode, string(errorBody), response.Header)
	}

	if observer != nil {
		observer.Trace(ctx, "HTTP stream started",
			observability.String(observability.AttrHTTPURL, url),
			observability.Int(observability.AttrHTTPStatusCode, response.StatusCode),
			observability.Int(observability.AttrHTTPRequestBodySize, requestSize),
			observability.Duration(observability.AttrHTTPDuration, time.Since(start)),
		)
	}
	return response, nil
}

// maxSSELineSize is the largest single SSE line accepted (1 MB); the
// bufio.Scanner default of 64 KiB is too small for long completions.
const maxSSELineSize = 1 * 1024 * 1024

// SSEScanner reads Server-Sent Events data payloads from an io.Reader.
type SSEScanner struct {
	scanner *bufio.Scanner
}

// NewSSEScanner creates an SSEScanner over reader.
func NewSSEScanner(reader io.Reader) *SSEScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)
	return &SSEScanner{scanner: scanner}
}

// Next returns the next event's data payload. Consecutive "data:" lines are
// joined with newlines; comments and other fields are skipped. It returns
// io.EOF at the end of the stream or on a "[DONE]" sentinel. A stream that
// ends without the blank line terminating its last event still yields that
// event, since a cut connection is exactly when partial output matters.
func (s *SSEScanner) Next() (string, error) {
	var dataLines []string

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			if len(dataLines) > 0 {
				return strings.Join(dataLines, "\n"), nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		if data, ok := strings.CutPrefix(line, "data:"); ok {
			data = strings.TrimSpace(data)
			if data == "[DONE]" {
				return "", io.EOF
			}
			dataLines = append(dataLines, data)
		}
	}

	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("SSE scanner error: %w", err)
	}
	if len(dataLines) > 0 {
		return strings.Join(dataLines, "\n"), nil
	}
	return "", io.EOF
}
