// Package observability defines the logging and metrics interfaces shared by
// the recovery core, the generative-AI transport and the HTTP service.
//
// The central entry point is [Provider], which composes [Logger] and
// [Metrics] into a single injectable dependency. Callers that cannot take the
// provider as a constructor argument propagate it through a
// [context.Context] with [ContextWithObserver] and read it back with
// [ObserverFromContext]. A nil Provider is valid everywhere and disables
// reporting.
//
// semconv.go holds the attribute keys and metric names used when reporting,
// so every component logs the same fields under the same names.
package observability
