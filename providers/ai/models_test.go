package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestChatResponse_Truncated(t *testing.T) {
	tests := []struct {
		name     string
		response *ChatResponse
		want     bool
	}{
		{"nil", nil, false},
		{"stop", &ChatResponse{FinishReason: FinishReasonStop}, false},
		{"length", &ChatResponse{FinishReason: FinishReasonLength}, true},
		{"unfinished stream", &ChatResponse{Content: "{"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.response.Truncated(); got != tt.want {
				t.Errorf("Truncated() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResponseFormat_WantsJSON(t *testing.T) {
	tests := []struct {
		name   string
		format *ResponseFormat
		want   bool
	}{
		{"nil", nil, false},
		{"text", &ResponseFormat{Type: "text"}, false},
		{"json_object", &ResponseFormat{Type: "json_object"}, true},
		{"schema only", &ResponseFormat{Schema: json.RawMessage(`{"type":"object"}`)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.WantsJSON(); got != tt.want {
				t.Errorf("WantsJSON() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusError_Temporary(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusServiceUnavailable, true},
		{529, true},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusNotFound, false},
	}

	for _, tt := range tests {
		err := &StatusError{StatusCode: tt.status}
		if got := err.Temporary(); got != tt.want {
			t.Errorf("StatusError{%d}.Temporary() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestAPIKeyContext(t *testing.T) {
	if got := APIKeyFromContext(context.Background()); got != "" {
		t.Errorf("expected empty key, got %q", got)
	}
	ctx := ContextWithAPIKey(context.Background(), "key-2")
	if got := APIKeyFromContext(ctx); got != "key-2" {
		t.Errorf("APIKeyFromContext() = %q, want key-2", got)
	}
}

func TestNewStatusError_RetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{"absent", "", 0},
		{"seconds", "30", 30 * time.Second},
		{"negative", "-5", 0},
		{"garbage", "soon", 0},
		{"past date", "Mon, 02 Jan 2006 15:04:05 GMT", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.header != "" {
				header.Set("Retry-After", tt.header)
			}
			err := NewStatusError(http.StatusTooManyRequests, "quota", header)
			if err.RetryAfter != tt.want {
				t.Errorf("RetryAfter = %v, want %v", err.RetryAfter, tt.want)
			}
			if err.StatusCode != http.StatusTooManyRequests || err.Body != "quota" {
				t.Errorf("unexpected StatusError %+v", err)
			}
		})
	}

	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	err := NewStatusError(http.StatusServiceUnavailable, "", http.Header{"Retry-After": []string{future}})
	if err.RetryAfter <= 58*time.Minute || err.RetryAfter > time.Hour {
		t.Errorf("RetryAfter for an HTTP date = %v, want about an hour", err.RetryAfter)
	}
}
