package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestAttributeConstructors(t *testing.T) {
	tests := []struct {
		name      string
		attr      Attribute
		wantKey   string
		wantValue interface{}
	}{
		{"string", String("key", "value"), "key", "value"},
		{"int", Int("count", 42), "count", 42},
		{"int64", Int64("big", 9223372036854775807), "big", int64(9223372036854775807)},
		{"float64", Float64("ratio", 0.5), "ratio", 0.5},
		{"bool", Bool("flag", true), "flag", true},
		{"duration", Duration("latency", 5*time.Second), "latency", 5 * time.Second},
		{"error", Error(errors.New("boom")), AttrError, "boom"},
		{"nil error", Error(nil), AttrError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", tt.attr.Key, tt.wantKey)
			}
			if tt.attr.Value != tt.wantValue {
				t.Errorf("Value = %v, want %v", tt.attr.Value, tt.wantValue)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("short", 10); got != "short" {
		t.Errorf("TruncateString() = %q, want unchanged", got)
	}

	got := TruncateString("abcdefghij", 4)
	if !strings.HasPrefix(got, "abcd... ") {
		t.Errorf("TruncateString() = %q, want prefix %q", got, "abcd... ")
	}
	if !strings.Contains(got, "total: 10 chars") {
		t.Errorf("TruncateString() = %q, want original length in suffix", got)
	}

	long := strings.Repeat("x", DefaultMaxStringLength+1)
	if got := TruncateString(long, 0); !strings.Contains(got, "truncated") {
		t.Errorf("TruncateString(_, 0) should fall back to the default limit, got %d chars", len(got))
	}
	if got := Preview(long); got != TruncateString(long, DefaultMaxStringLength) {
		t.Errorf("Preview() disagrees with TruncateString()")
	}
}

func TestObserverFromContext(t *testing.T) {
	if got := ObserverFromContext(context.Background()); got != nil {
		t.Errorf("expected nil observer from empty context, got %v", got)
	}

	//nolint:staticcheck // nil context is part of the contract
	if got := ObserverFromContext(nil); got != nil {
		t.Errorf("expected nil observer from nil context, got %v", got)
	}

	observer := Discard
	ctx := ContextWithObserver(context.Background(), observer)
	if got := ObserverFromContext(ctx); got != observer {
		t.Errorf("expected stored observer, got %v", got)
	}

	//nolint:staticcheck // nil context is part of the contract
	ctx = ContextWithObserver(nil, observer)
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	if got := ObserverFromContext(ctx); got != observer {
		t.Errorf("expected stored observer on fresh context, got %v", got)
	}
}

func TestDiscard(t *testing.T) {
	ctx := context.Background()

	// none of these may panic
	Discard.Counter("c").Add(ctx, 1)
	Discard.Histogram("h").Record(ctx, 1.5)
	Discard.Trace(ctx, "trace")
	Discard.Error(ctx, "error", Error(nil))
}
