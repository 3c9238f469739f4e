// Package slogobs provides an observability.Provider backed by log/slog.
// Output goes through a [Handler] that writes compact, pretty or JSON lines;
// format and level come from [WithFormat] and [WithLevel] or from the
// AMIN_LOG_FORMAT / AMIN_LOG_LEVEL environment variables.
package slogobs
