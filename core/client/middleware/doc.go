// Package middleware provides the built-in client middlewares. Each New*
// function returns a [client.MiddlewareConfig] for [client.WithMiddleware].
//
//   - [NewRotationMiddleware] walks (API key, model) pairs, moving on when a
//     pair is rate limited, overloaded or unknown.
//   - [NewRetryMiddleware] retries transient failures with exponential
//     backoff and jitter.
//   - [NewTimeoutMiddleware] bounds every call, streams included.
//   - [NewLoggingMiddleware] logs each call through an observability.Provider.
//
// Middlewares execute outermost-first:
//
//	c, err := client.New(provider,
//	    client.WithMiddleware(
//	        middleware.NewTimeoutMiddleware(60*time.Second),
//	        middleware.NewRotationMiddleware(middleware.RotationConfig{
//	            Credentials: cfg.APIKeys,
//	            Models:      cfg.Models,
//	        }),
//	        middleware.NewLoggingMiddleware(observer, middleware.LogLevelStandard),
//	    ),
//	)
package middleware
