package observability

import "context"

type observerContextKey struct{}

// ObserverFromContext returns the Provider stored in ctx, or nil.
func ObserverFromContext(ctx context.Context) Provider {
	if ctx == nil {
		return nil
	}
	observer, _ := ctx.Value(observerContextKey{}).(Provider)
	return observer
}

// ContextWithObserver returns a copy of ctx carrying observer.
// A nil ctx is replaced with context.Background().
func ContextWithObserver(ctx context.Context, observer Provider) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, observerContextKey{}, observer)
}
