package observability

import (
	"context"
	"fmt"
	"time"
)

// Provider receives the logs and metrics of every component in this module:
// recovery reports, LLM calls and HTTP requests. Implementations must be
// safe for concurrent use. A nil Provider means "don't report".
type Provider interface {
	Metrics
	Logger
}

type Metrics interface {
	// Counter returns the named counter, creating it on first use.
	Counter(name string) Counter
	// Histogram returns the named histogram, creating it on first use.
	Histogram(name string) Histogram
}

type Counter interface {
	Add(ctx context.Context, value int64, attrs ...Attribute)
}

type Histogram interface {
	Record(ctx context.Context, value float64, attrs ...Attribute)
}

// Logger levels mirror slog, plus Trace for per-request HTTP detail.
type Logger interface {
	Trace(ctx context.Context, msg string, attrs ...Attribute)
	Debug(ctx context.Context, msg string, attrs ...Attribute)
	Info(ctx context.Context, msg string, attrs ...Attribute)
	Warn(ctx context.Context, msg string, attrs ...Attribute)
	Error(ctx context.Context, msg string, attrs ...Attribute)
}

// Attribute is one key-value pair attached to a log entry or metric. Keys
// should come from semconv.go.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute { return Attribute{Key: key, Value: value} }

func Int(key string, value int) Attribute { return Attribute{Key: key, Value: value} }

func Int64(key string, value int64) Attribute { return Attribute{Key: key, Value: value} }

func Float64(key string, value float64) Attribute { return Attribute{Key: key, Value: value} }

func Bool(key string, value bool) Attribute { return Attribute{Key: key, Value: value} }

func Duration(key string, value time.Duration) Attribute { return Attribute{Key: key, Value: value} }

// Error stores err's message under AttrError; nil becomes "".
func Error(err error) Attribute {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return String(AttrError, message)
}

// Discard is a Provider that drops everything. Use it where a non-nil
// Provider is required but nothing should be reported.
var Discard Provider = discard{}

type discard struct{}

func (discard) Counter(string) Counter                        { return discard{} }
func (discard) Histogram(string) Histogram                    { return discard{} }
func (discard) Add(context.Context, int64, ...Attribute)      {}
func (discard) Record(context.Context, float64, ...Attribute) {}
func (discard) Trace(context.Context, string, ...Attribute)   {}
func (discard) Debug(context.Context, string, ...Attribute)   {}
func (discard) Info(context.Context, string, ...Attribute)    {}
func (discard) Warn(context.Context, string, ...Attribute)    {}
func (discard) Error(context.Context, string, ...Attribute)   {}

// DefaultMaxStringLength bounds previews of model output in log attributes.
const DefaultMaxStringLength = 500

// TruncateString cuts s to maxLen bytes and notes the original length.
// A non-positive maxLen uses DefaultMaxStringLength.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}

// Preview is TruncateString with DefaultMaxStringLength.
func Preview(s string) string {
	return TruncateString(s, DefaultMaxStringLength)
}
