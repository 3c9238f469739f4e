package ai

import "iter"

// StreamEventType tells which field of a StreamEvent is set.
type StreamEventType string

const (
	StreamEventContent   StreamEventType = "content"   // Content holds a text delta
	StreamEventReasoning StreamEventType = "reasoning" // Reasoning holds a thinking delta
	StreamEventUsage     StreamEventType = "usage"     // Usage holds token counts so far
	StreamEventDone      StreamEventType = "done"      // FinishReason is set; nothing follows
)

// StreamEvent is one delta of a streamed response.
type StreamEvent struct {
	Type         StreamEventType `json:"type"`
	Content      string          `json:"content,omitempty"`
	Reasoning    string          `json:"reasoning,omitempty"`
	Usage        *Usage          `json:"usage,omitempty"`
	FinishReason string          `json:"finish_reason,omitempty"`
}

// ChatStream is a single-use sequence of StreamEvents. A non-nil error ends
// it. It must be drained, by ranging over Iter (breaking early is fine) or by
// Collect, so the provider can release the HTTP body.
type ChatStream struct {
	events iter.Seq2[StreamEvent, error]
}

func NewChatStream(events iter.Seq2[StreamEvent, error]) *ChatStream {
	return &ChatStream{events: events}
}

// NewSingleEventStream replays a complete response as a stream, for
// providers without StreamMessage. Empty fields produce no event; the done
// event is always last.
func NewSingleEventStream(response *ChatResponse) *ChatStream {
	var events []StreamEvent
	if response.Content != "" {
		events = append(events, StreamEvent{Type: StreamEventContent, Content: response.Content})
	}
	if response.Reasoning != "" {
		events = append(events, StreamEvent{Type: StreamEventReasoning, Reasoning: response.Reasoning})
	}
	if response.Usage != nil {
		events = append(events, StreamEvent{Type: StreamEventUsage, Usage: response.Usage})
	}
	events = append(events, StreamEvent{Type: StreamEventDone, FinishReason: response.FinishReason})

	return NewChatStream(func(yield func(StreamEvent, error) bool) {
		for _, event := range events {
			if !yield(event, nil) {
				return
			}
		}
	})
}

// Iter exposes the raw events:
//
//	for event, err := range stream.Iter() {
//	    if err != nil { ... }
//	    fmt.Print(event.Content)
//	}
func (stream *ChatStream) Iter() iter.Seq2[StreamEvent, error] {
	return stream.events
}

// Collect drains the stream into one response. On a mid-stream error the
// response holds everything received so far (never nil) and the error is
// returned with it; FinishReason stays empty since the stream never
// finished. That partial Content is what parse.ParseWithFallback repairs.
func (stream *ChatStream) Collect() (*ChatResponse, error) {
	response := &ChatResponse{}
	for event, err := range stream.events {
		if err != nil {
			return response, err
		}
		response.apply(event)
	}
	return response, nil
}

func (response *ChatResponse) apply(event StreamEvent) {
	switch event.Type {
	case StreamEventContent:
		response.Content += event.Content
	case StreamEventReasoning:
		response.Reasoning += event.Reasoning
	case StreamEventUsage:
		if event.Usage != nil {
			response.Usage = event.Usage
		}
	case StreamEventDone:
		response.FinishReason = event.FinishReason
	}
}
