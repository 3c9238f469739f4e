package slogobs

import (
	"log/slog"
	"os"
	"strings"
)

// Format represents the output format for logs.
type Format string

const (
	// FormatCompact is a single-line format with JSON attributes (default).
	// Example: 2025-11-03 10:40:35  WARN Structured output fell back → {"recovery.outcome":"failed"}
	FormatCompact Format = "compact"

	// FormatPretty is a multi-line format with one attribute per line.
	FormatPretty Format = "pretty"

	// FormatJSON is one JSON object per line, for log aggregation.
	FormatJSON Format = "json"
)

// LevelTrace sits below slog.LevelDebug and is filtered out unless enabled explicitly.
const LevelTrace = slog.LevelDebug - 4

// ParseFormat parses a format string. Unknown values yield FormatCompact.
func ParseFormat(s string) Format {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "pretty":
		return FormatPretty
	case "json":
		return FormatJSON
	default:
		return FormatCompact
	}
}

// GetFormatFromEnv reads AMIN_LOG_FORMAT, then LOG_FORMAT.
func GetFormatFromEnv() Format {
	if format := os.Getenv("AMIN_LOG_FORMAT"); format != "" {
		return ParseFormat(format)
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		return ParseFormat(format)
	}
	return FormatCompact
}

// String returns the string representation of the Format.
func (f Format) String() string {
	return string(f)
}

// ParseLogLevel parses TRACE, DEBUG, INFO, WARN/WARNING or ERROR
// (case-insensitive). Anything else yields INFO.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetLogLevelFromEnv reads AMIN_LOG_LEVEL, then LOG_LEVEL. Default: INFO.
func GetLogLevelFromEnv() slog.Level {
	level := os.Getenv("AMIN_LOG_LEVEL")
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	return ParseLogLevel(level)
}
