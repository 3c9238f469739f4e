// Package config loads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrNotConfigured is returned by RequireGenerator when no Gemini API key is
// available. Repair and parse work without one; only generation needs it.
var ErrNotConfigured = errors.New("generative AI is not configured: set GEMINI_API_KEY or GEMINI_API_KEYS")

const (
	defaultModels          = "gemini-2.0-flash,gemini-2.0-flash-lite"
	defaultHTTPAddr        = ":8080"
	defaultAllowedOrigins  = "*"
	defaultMaxOutputTokens = 8192
	defaultTimeout         = 60 * time.Second
)

// Config holds the settings for the HTTP service and the generator.
type Config struct {
	APIKeys         []string
	Models          []string
	BaseURL         string
	HTTPAddr        string
	AllowedOrigins  []string
	MaxOutputTokens int
	Timeout         time.Duration
}

// Option customizes Load.
type Option func(*loadOptions)

type loadOptions struct {
	envFiles []string
	lookup   func(string) (string, bool)
}

// WithEnvFile reads path instead of ./.env. Variables already set in the
// environment win over the file. A missing file is not an error.
func WithEnvFile(path string) Option {
	return func(o *loadOptions) {
		o.envFiles = []string{path}
	}
}

// WithoutEnvFile skips .env loading entirely.
func WithoutEnvFile() Option {
	return func(o *loadOptions) {
		o.envFiles = nil
	}
}

// WithLookup replaces os.LookupEnv, mainly for tests.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(o *loadOptions) {
		o.lookup = lookup
	}
}

// Load reads the configuration. Malformed numeric or duration values are
// errors; absent ones take defaults.
func Load(opts ...Option) (*Config, error) {
	options := &loadOptions{
		envFiles: []string{".env"},
		lookup:   os.LookupEnv,
	}
	for _, opt := range opts {
		opt(options)
	}

	for _, path := range options.envFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	get := func(key, fallback string) string {
		if value, ok := options.lookup(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
		return fallback
	}

	cfg := &Config{
		APIKeys:        splitList(get("GEMINI_API_KEYS", get("GEMINI_API_KEY", ""))),
		Models:         splitList(get("GEMINI_MODELS", defaultModels)),
		BaseURL:        get("GEMINI_API_BASE_URL", ""),
		HTTPAddr:       get("RECOVERY_HTTP_ADDR", defaultHTTPAddr),
		AllowedOrigins: splitList(get("RECOVERY_ALLOWED_ORIGINS", defaultAllowedOrigins)),
	}

	maxTokens, err := strconv.Atoi(get("GEMINI_MAX_OUTPUT_TOKENS", strconv.Itoa(defaultMaxOutputTokens)))
	if err != nil || maxTokens <= 0 {
		return nil, fmt.Errorf("GEMINI_MAX_OUTPUT_TOKENS must be a positive integer: %q", get("GEMINI_MAX_OUTPUT_TOKENS", ""))
	}
	cfg.MaxOutputTokens = maxTokens

	timeout, err := time.ParseDuration(get("GEMINI_TIMEOUT", defaultTimeout.String()))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("GEMINI_TIMEOUT must be a positive duration such as 60s: %q", get("GEMINI_TIMEOUT", ""))
	}
	cfg.Timeout = timeout

	if err := CheckOrigins(cfg.AllowedOrigins); err != nil {
		return nil, fmt.Errorf("RECOVERY_ALLOWED_ORIGINS: %w", err)
	}

	return cfg, nil
}

// CheckOrigins reports the first CORS origin the middleware would refuse.
// An origin is "*", or an http:// or https:// URL that may hold one '*'.
func CheckOrigins(origins []string) error {
	for _, origin := range origins {
		if origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("origin %q needs an http:// or https:// scheme", origin)
		}
		if strings.Count(origin, "*") > 1 {
			return fmt.Errorf("origin %q has more than one '*'", origin)
		}
	}
	return nil
}

// RequireGenerator returns ErrNotConfigured unless at least one API key is set.
func (c *Config) RequireGenerator() error {
	if c == nil || len(c.APIKeys) == 0 {
		return ErrNotConfigured
	}
	return nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
