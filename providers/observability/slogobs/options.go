package slogobs

import (
	"io"
	"log/slog"
	"os"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/observability"
)

// Option configures New.
type Option func(*settings)

// settings starts from the environment; options given to New override it.
type settings struct {
	handler HandlerOptions
	service string
	// logger bypasses the custom handler entirely.
	logger *slog.Logger
}

func defaultSettings() *settings {
	return &settings{
		handler: HandlerOptions{
			Format: GetFormatFromEnv(),
			Level:  GetLogLevelFromEnv(),
			Output: os.Stderr,
		},
	}
}

func WithFormat(format Format) Option {
	return func(s *settings) { s.handler.Format = format }
}

func WithLevel(level slog.Level) Option {
	return func(s *settings) { s.handler.Level = level }
}

// WithLevelName is WithLevel for flag and config values such as "debug";
// an empty name keeps the level from the environment.
func WithLevelName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.handler.Level = ParseLogLevel(name)
		}
	}
}

func WithOutput(output io.Writer) Option {
	return func(s *settings) { s.handler.Output = output }
}

// WithService adds service.name to every entry, so a shared log stream can
// tell the HTTP service apart from one-shot CLI runs.
func WithService(name string) Option {
	return func(s *settings) { s.service = name }
}

// WithLogger logs through an existing slog.Logger. Format, level and output
// options are then ignored; WithService still applies.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

func (s *settings) build() *slog.Logger {
	logger := s.logger
	if logger == nil {
		handlerOptions := s.handler
		logger = slog.New(NewHandler(&handlerOptions))
	}
	if s.service != "" {
		logger = logger.With(slog.String(observability.AttrServiceName, s.service))
	}
	return logger
}
