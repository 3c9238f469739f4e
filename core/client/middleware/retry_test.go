package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/core/client"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/ai"
)

// ========== Mock helpers ==========

// mockSendSequence returns the next configured error or response per call.
type mockSendSequence struct {
	responses []*ai.ChatResponse
	errors    []error
	requests  []ai.ChatRequest
	apiKeys   []string
	callCount int
}

func (m *mockSendSequence) next(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	index := m.callCount
	m.callCount++
	m.requests = append(m.requests, request)
	m.apiKeys = append(m.apiKeys, ai.APIKeyFromContext(ctx))

	if index < len(m.errors) && m.errors[index] != nil {
		return nil, m.errors[index]
	}
	if index < len(m.responses) {
		return m.responses[index], nil
	}
	return &ai.ChatResponse{Content: "default", FinishReason: ai.FinishReasonStop}, nil
}

func fastRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func statusErr(code int) error {
	return &ai.StatusError{StatusCode: code, Body: http.StatusText(code)}
}

// ========== Tests ==========

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	seq := &mockSendSequence{errors: []error{statusErr(429), statusErr(503)}}
	send := NewRetryMiddleware(fastRetryConfig(3)).Send(seq.next)

	response, err := send(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if response.Content != "default" {
		t.Errorf("Content = %q", response.Content)
	}
	if seq.callCount != 3 {
		t.Errorf("expected 3 calls, got %d", seq.callCount)
	}
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	seq := &mockSendSequence{errors: []error{statusErr(400)}}
	send := NewRetryMiddleware(fastRetryConfig(3)).Send(seq.next)

	_, err := send(context.Background(), ai.ChatRequest{})
	if err == nil || errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("expected the raw 400 error, got %v", err)
	}
	if seq.callCount != 1 {
		t.Errorf("expected 1 call, got %d", seq.callCount)
	}
}

func TestRetry_Exhausted(t *testing.T) {
	last := statusErr(500)
	seq := &mockSendSequence{errors: []error{statusErr(500), statusErr(500), last}}
	send := NewRetryMiddleware(fastRetryConfig(2)).Send(seq.next)

	_, err := send(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("expected ErrRetryExhausted, got %v", err)
	}
	if !errors.Is(err, last) {
		t.Errorf("expected the last provider error in the chain, got %v", err)
	}
	if seq.callCount != 3 {
		t.Errorf("expected 3 calls, got %d", seq.callCount)
	}
}

func TestRetry_ContextCancelledDuringBackoff(t *testing.T) {
	seq := &mockSendSequence{errors: []error{statusErr(503), statusErr(503)}}
	send := NewRetryMiddleware(RetryConfig{MaxRetries: 3, InitialBackoff: time.Hour}).Send(seq.next)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := send(ctx, ai.ChatRequest{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if seq.callCount != 1 {
		t.Errorf("expected 1 call, got %d", seq.callCount)
	}
}

func TestRetry_CustomRetryableFunc(t *testing.T) {
	flaky := errors.New("flaky")
	seq := &mockSendSequence{errors: []error{flaky}}
	config := fastRetryConfig(1)
	config.RetryableFunc = func(err error) bool { return errors.Is(err, flaky) }

	if _, err := NewRetryMiddleware(config).Send(seq.next)(context.Background(), ai.ChatRequest{}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestRetry_StreamRetriesErrorsBeforeTheStream(t *testing.T) {
	calls := 0
	next := client.StreamFunc(func(context.Context, ai.ChatRequest) (*ai.ChatStream, error) {
		calls++
		if calls == 1 {
			return nil, statusErr(http.StatusServiceUnavailable)
		}
		return ai.NewSingleEventStream(&ai.ChatResponse{Content: `{"a": 1}`, FinishReason: ai.FinishReasonStop}), nil
	})

	stream, err := NewRetryMiddleware(fastRetryConfig(2)).Stream(next)(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("expected success after one retry, got %v", err)
	}
	response, err := stream.Collect()
	if err != nil || response.Content != `{"a": 1}` {
		t.Fatalf("Collect() = %+v, %v", response, err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestRetry_StreamLeavesMidStreamErrorsToTheCaller(t *testing.T) {
	calls := 0
	cut := statusErr(http.StatusServiceUnavailable)
	next := client.StreamFunc(func(context.Context, ai.ChatRequest) (*ai.ChatStream, error) {
		calls++
		return ai.NewChatStream(func(yield func(ai.StreamEvent, error) bool) {
			if !yield(ai.StreamEvent{Type: ai.StreamEventContent, Content: `{"a": [1`}, nil) {
				return
			}
			yield(ai.StreamEvent{}, cut)
		}), nil
	})

	stream, err := NewRetryMiddleware(fastRetryConfig(2)).Stream(next)(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	response, err := stream.Collect()
	if !errors.Is(err, cut) || response.Content != `{"a": [1` {
		t.Errorf("Collect() = %+v, %v; want the partial content and the cut", response, err)
	}
	if calls != 1 {
		t.Errorf("a started stream must not be replayed, got %d calls", calls)
	}
}

func TestRetry_StreamExhausted(t *testing.T) {
	next := client.StreamFunc(func(context.Context, ai.ChatRequest) (*ai.ChatStream, error) {
		return nil, statusErr(http.StatusTooManyRequests)
	})

	_, err := NewRetryMiddleware(fastRetryConfig(1)).Stream(next)(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("expected ErrRetryExhausted, got %v", err)
	}
}

func TestRetryConfig_Backoff(t *testing.T) {
	config := RetryConfig{}.withDefaults()

	tests := []struct {
		name    string
		attempt int
		lastErr error
		min     time.Duration
		max     time.Duration
	}{
		{"first retry", 0, nil, time.Second, 1100 * time.Millisecond},
		{"second retry", 1, nil, 2 * time.Second, 2200 * time.Millisecond},
		{"capped", 10, nil, 30 * time.Second, 30 * time.Second},
		{"retry-after wins", 0, &ai.StatusError{StatusCode: http.StatusTooManyRequests, RetryAfter: 7 * time.Second}, 7 * time.Second, 7 * time.Second},
		{"retry-after is capped", 0, &ai.StatusError{StatusCode: http.StatusTooManyRequests, RetryAfter: time.Hour}, 30 * time.Second, 30 * time.Second},
		{"shorter retry-after is ignored", 1, &ai.StatusError{StatusCode: http.StatusTooManyRequests, RetryAfter: time.Millisecond}, 2 * time.Second, 2200 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := config.backoff(tt.attempt, tt.lastErr)
			if got < tt.min || got > tt.max {
				t.Errorf("backoff(%d) = %v, want within [%v, %v]", tt.attempt, got, tt.min, tt.max)
			}
		})
	}
}

func TestIsTransientAndRotatable(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantTransient bool
		wantRotatable bool
	}{
		{"nil", nil, false, false},
		{"429", statusErr(429), true, true},
		{"529", statusErr(529), true, true},
		{"wrapped 503", fmt.Errorf("gemini: %w", statusErr(503)), true, true},
		{"401", statusErr(401), false, true},
		{"404 model", statusErr(404), false, true},
		{"400", statusErr(400), false, false},
		{"no credentials", ai.ErrNoCredentials, false, false},
		{"cancelled", context.Canceled, false, false},
		{"plain", errors.New("boom"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.wantTransient {
				t.Errorf("IsTransient() = %v, want %v", got, tt.wantTransient)
			}
			if got := IsRotatable(tt.err); got != tt.wantRotatable {
				t.Errorf("IsRotatable() = %v, want %v", got, tt.wantRotatable)
			}
		})
	}
}
