package slogobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
)

// Handler is a slog.Handler that writes compact, pretty or JSON lines.
type Handler struct {
	format Format
	level  slog.Level
	output io.Writer
	colors bool
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// Format specifies the output format (compact, pretty, json).
	Format Format
	// Level is the minimum log level to output.
	Level slog.Level
	// Output is where logs are written (defaults to os.Stderr).
	Output io.Writer
	// Colors enables ANSI color codes (only for compact/pretty formats).
	Colors bool
}

// NewHandler creates a new Handler with the given options.
func NewHandler(opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}
	format := opts.Format
	if format == "" {
		format = FormatCompact
	}

	colors := opts.Colors
	if !colors && format != FormatJSON {
		if f, ok := output.(*os.File); ok {
			colors = isTerminal(f)
		}
	}

	return &Handler{
		format: format,
		level:  opts.Level,
		output: output,
		colors: colors,
		mu:     &sync.Mutex{},
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats and writes a log record.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var line []byte
	switch h.format {
	case FormatPretty:
		line = h.formatPretty(r)
	case FormatJSON:
		encoded, err := h.formatJSON(r)
		if err != nil {
			return err
		}
		line = encoded
	default:
		line = h.formatCompact(r)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.output.Write(line)
	return err
}

// WithAttrs returns a new Handler with additional attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup returns a new Handler with a group name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

// formatCompact renders "2006-01-02 15:04:05 LEVEL Message → {json attrs}".
func (h *Handler) formatCompact(r slog.Record) []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, r.Time.Format("2006-01-02 15:04:05")...)
	buf = append(buf, ' ')
	buf = h.appendLevel(buf, r.Level, fmt.Sprintf("%5s", levelString(r.Level)))
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)

	if attrs := h.collectAttrs(r); len(attrs) > 0 {
		buf = append(buf, " → "...)
		encoded, err := json.Marshal(attrs)
		if err != nil {
			buf = append(buf, "[json-error]"...)
		} else {
			buf = append(buf, encoded...)
		}
	}
	return append(buf, '\n')
}

// formatPretty renders the header line followed by one indented line per
// attribute, sorted by key.
func (h *Handler) formatPretty(r slog.Record) []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, r.Time.Format("2006-01-02 15:04:05")...)
	buf = append(buf, ' ')
	buf = h.appendLevel(buf, r.Level, fmt.Sprintf("%-7s", levelString(r.Level)))
	buf = append(buf, r.Message...)
	buf = append(buf, '\n')

	attrs := h.collectAttrs(r)
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for i, key := range keys {
		if i == len(keys)-1 {
			buf = append(buf, "                   └─ "...)
		} else {
			buf = append(buf, "                   ├─ "...)
		}
		buf = append(buf, key...)
		buf = append(buf, ": "...)
		buf = append(buf, fmt.Sprintf("%v", attrs[key])...)
		buf = append(buf, '\n')
	}
	return buf
}

// formatJSON merges time, level and msg with the record attributes.
func (h *Handler) formatJSON(r slog.Record) ([]byte, error) {
	data := h.collectAttrs(r)
	data["time"] = r.Time.Format("2006-01-02T15:04:05")
	data["level"] = levelString(r.Level)
	data["msg"] = r.Message

	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(encoded, '\n'), nil
}

func (h *Handler) appendLevel(buf []byte, level slog.Level, text string) []byte {
	if !h.colors {
		return append(buf, text...)
	}
	buf = append(buf, colorForLevel(level)...)
	buf = append(buf, text...)
	return append(buf, colorReset...)
}

// collectAttrs flattens handler and record attributes into one map, prefixing
// keys with the active groups.
func (h *Handler) collectAttrs(r slog.Record) map[string]interface{} {
	attrs := make(map[string]interface{}, len(h.attrs)+r.NumAttrs())
	for _, attr := range h.attrs {
		h.addAttr(attrs, attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		h.addAttr(attrs, attr)
		return true
	})
	return attrs
}

func (h *Handler) addAttr(attrs map[string]interface{}, attr slog.Attr) {
	key := attr.Key
	for i := len(h.groups) - 1; i >= 0; i-- {
		key = h.groups[i] + "." + key
	}

	value := attr.Value.Resolve().Any()
	if err, ok := value.(error); ok {
		value = err.Error()
	}
	attrs[key] = value
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "TRACE"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

func colorForLevel(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return colorGray
	case level < slog.LevelInfo:
		return colorBlue
	case level < slog.LevelWarn:
		return colorGreen
	case level < slog.LevelError:
		return colorYellow
	default:
		return colorRed
	}
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
