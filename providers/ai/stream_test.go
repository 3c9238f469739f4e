package ai

import (
	"errors"
	"testing"
)

func TestChatStream_Collect(t *testing.T) {
	stream := NewChatStream(func(yield func(StreamEvent, error) bool) {
		events := []StreamEvent{
			{Type: StreamEventContent, Content: `{"title": `},
			{Type: StreamEventReasoning, Reasoning: "planning"},
			{Type: StreamEventContent, Content: `"Algebra"}`},
			{Type: StreamEventUsage, Usage: &Usage{TotalTokens: 12}},
			{Type: StreamEventDone, FinishReason: FinishReasonStop},
		}
		for _, event := range events {
			if !yield(event, nil) {
				return
			}
		}
	})

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if response.Content != `{"title": "Algebra"}` {
		t.Errorf("Content = %q", response.Content)
	}
	if response.Reasoning != "planning" {
		t.Errorf("Reasoning = %q", response.Reasoning)
	}
	if response.Usage == nil || response.Usage.TotalTokens != 12 {
		t.Errorf("Usage = %+v", response.Usage)
	}
	if response.FinishReason != FinishReasonStop {
		t.Errorf("FinishReason = %q", response.FinishReason)
	}
}

func TestChatStream_Collect_KeepsPartialContentOnError(t *testing.T) {
	streamErr := errors.New("connection reset")
	stream := NewChatStream(func(yield func(StreamEvent, error) bool) {
		if !yield(StreamEvent{Type: StreamEventContent, Content: `{"questions": [{"text": "Def`}, nil) {
			return
		}
		yield(StreamEvent{}, streamErr)
	})

	response, err := stream.Collect()
	if !errors.Is(err, streamErr) {
		t.Fatalf("expected stream error, got %v", err)
	}
	if response == nil {
		t.Fatal("expected a partial response, got nil")
	}
	if response.Content != `{"questions": [{"text": "Def` {
		t.Errorf("partial Content = %q", response.Content)
	}
	if response.FinishReason != "" {
		t.Errorf("FinishReason = %q, want empty for an unfinished stream", response.FinishReason)
	}
}

func TestChatStream_IterStopsEarly(t *testing.T) {
	produced := 0
	stream := NewChatStream(func(yield func(StreamEvent, error) bool) {
		for i := 0; i < 10; i++ {
			produced++
			if !yield(StreamEvent{Type: StreamEventContent, Content: "x"}, nil) {
				return
			}
		}
	})

	for range stream.Iter() {
		break
	}
	if produced != 1 {
		t.Errorf("expected producer to stop after 1 event, produced %d", produced)
	}
}

func TestNewSingleEventStream(t *testing.T) {
	original := &ChatResponse{
		Content:      `{"a": 1`,
		FinishReason: FinishReasonLength,
		Usage:        &Usage{CompletionTokens: 8},
	}

	response, err := NewSingleEventStream(original).Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if response.Content != original.Content || response.FinishReason != original.FinishReason {
		t.Errorf("round trip mismatch: %+v", response)
	}
	if !response.Truncated() {
		t.Error("expected the collected response to report truncation")
	}
}
