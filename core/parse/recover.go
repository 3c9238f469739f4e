package parse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/observability"
)

// ErrDecodeFailure is matched by every error returned from Recover.
var ErrDecodeFailure = errors.New("structured output could not be decoded")

// Outcome is the terminal state of a recovery attempt.
type Outcome string

const (
	// OutcomeStrict means the raw text decoded without changes.
	OutcomeStrict Outcome = "strict"
	// OutcomeRepaired means the text decoded only after RepairTruncated.
	OutcomeRepaired Outcome = "repaired"
	// OutcomeFailed means neither attempt decoded.
	OutcomeFailed Outcome = "failed"
)

func (o Outcome) String() string { return string(o) }

// DecodeError describes text that did not decode even after repair.
type DecodeError struct {
	// Input is the raw text as received.
	Input string
	// Repaired is the output of RepairTruncated(Input).
	Repaired string
	// Err is the error from the last decode attempt.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: %v", ErrDecodeFailure, e.Err)
}

// Unwrap exposes both ErrDecodeFailure and the underlying decoder error.
func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecodeFailure, e.Err}
}

// Recover decodes text as JSON into a T. It tries the raw text first, then
// RepairTruncated(text), and stops there: there is no retry loop and no
// other repair strategy. On failure the zero T is returned with a
// *DecodeError.
func Recover[T any](text string) (T, Outcome, error) {
	var strict T
	strictErr := json.Unmarshal([]byte(text), &strict)
	if strictErr == nil {
		return strict, OutcomeStrict, nil
	}

	repaired := RepairTruncated(text)
	if repaired == text {
		var zero T
		return zero, OutcomeFailed, &DecodeError{Input: text, Repaired: repaired, Err: strictErr}
	}

	var fixed T
	if err := json.Unmarshal([]byte(repaired), &fixed); err != nil {
		var zero T
		return zero, OutcomeFailed, &DecodeError{Input: text, Repaired: repaired, Err: err}
	}
	return fixed, OutcomeRepaired, nil
}

// FallbackOption configures ParseWithFallback.
type FallbackOption func(*fallbackConfig)

type fallbackConfig struct {
	observer observability.Provider
	label    string
	outcome  *Outcome
}

// WithObserver reports repairs and failures to observer instead of the one
// carried by the context.
func WithObserver(observer observability.Provider) FallbackOption {
	return func(c *fallbackConfig) {
		c.observer = observer
	}
}

// WithLabel names the payload in reports, e.g. "exam_paper".
func WithLabel(label string) FallbackOption {
	return func(c *fallbackConfig) {
		c.label = label
	}
}

// WithOutcome stores the terminal Outcome of the call in dst, so callers can
// tell a fallback apart from a decoded value that equals it.
func WithOutcome(dst *Outcome) FallbackOption {
	return func(c *fallbackConfig) {
		c.outcome = dst
	}
}

// ParseWithFallback decodes text into a T, repairing truncated output when
// needed, and returns fallback when the text cannot be decoded. It never
// panics and never returns an error; a DecodeFailure is only visible as the
// fallback value and through the observer, if one is configured.
//
// A successfully decoded value can still be semantically incomplete (for
// example the last array element of a truncated list); callers validate the
// shape they need.
func ParseWithFallback[T any](text string, fallback T, opts ...FallbackOption) T {
	return ParseWithFallbackContext(context.Background(), text, fallback, opts...)
}

// ParseWithFallbackContext is ParseWithFallback with the observer taken from
// ctx (see observability.ContextWithObserver) unless WithObserver is given.
func ParseWithFallbackContext[T any](ctx context.Context, text string, fallback T, opts ...FallbackOption) T {
	cfg := &fallbackConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.observer == nil {
		cfg.observer = observability.ObserverFromContext(ctx)
	}

	value, outcome, err := Recover[T](text)
	if cfg.outcome != nil {
		*cfg.outcome = outcome
	}
	report(ctx, cfg, reflect.TypeFor[T](), text, outcome, err)
	if err != nil {
		return fallback
	}
	return value
}

// report is fire-and-forget: a misbehaving observer must not change the
// value handed back to the caller.
func report(ctx context.Context, cfg *fallbackConfig, target reflect.Type, text string, outcome Outcome, err error) {
	observer := cfg.observer
	if observer == nil || outcome == OutcomeStrict {
		return
	}
	defer func() { _ = recover() }()

	attrs := []observability.Attribute{
		observability.String(observability.AttrRecoveryOutcome, outcome.String()),
		observability.String(observability.AttrRecoveryTargetType, fmt.Sprint(target)),
		observability.Int(observability.AttrRecoveryInputLength, len(text)),
	}
	if cfg.label != "" {
		attrs = append(attrs, observability.String(observability.AttrRecoveryLabel, cfg.label))
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		attrs = append(attrs,
			observability.Int(observability.AttrRecoveryRepairedLength, len(decodeErr.Repaired)),
			observability.String(observability.AttrRecoveryInputPreview, observability.Preview(text)),
			observability.Error(err),
		)
		observer.Warn(ctx, "Structured output fell back to default", attrs...)
		observer.Counter(observability.MetricRecoveryFailures).Add(ctx, 1)
		return
	}

	appended := len(RepairTruncated(text)) - len(text)
	attrs = append(attrs, observability.Int(observability.AttrRecoveryRepairedLength, len(text)+appended))
	observer.Debug(ctx, "Structured output repaired", attrs...)
	observer.Counter(observability.MetricRecoveryRepairs).Add(ctx, 1)
	observer.Histogram(observability.MetricRecoveryAppended).Record(ctx, float64(appended))
}
