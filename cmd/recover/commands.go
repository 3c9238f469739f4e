package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/core/client"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/core/client/middleware"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/core/parse"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/internal/config"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/ai/gemini"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/observability"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/providers/observability/slogobs"
	"github.com/frontierplayz8-cmyk/Amin-Academy-sub003/server"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "recover",
		Short:         "Repair truncated JSON produced by language models",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.AddCommand(newRepairCmd(), newParseCmd(), newServeCmd())
	return rootCmd
}

func newRepairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair [FILE]",
		Short: "Close an unterminated string and open brackets",
		Long:  "Reads FILE, or stdin when FILE is omitted or \"-\", and prints it with the missing closing characters appended.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RepairHandler,
	}
}

func newParseCmd() *cobra.Command {
	parseCmd := &cobra.Command{
		Use:   "parse [FILE]",
		Short: "Decode text as JSON, repairing truncation or printing the fallback",
		Args:  cobra.MaximumNArgs(1),
		RunE:  ParseHandler,
	}

	parseCmd.Flags().String("fallback", "null", "JSON value printed when the text cannot be decoded")
	parseCmd.Flags().Bool("lenient", false, "Also fix quotes, comments, trailing commas and code fences; fail instead of falling back")
	return parseCmd
}

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start the HTTP service",
		Args:    cobra.ExactArgs(0),
		RunE:    ServeHandler,
	}

	serveCmd.Flags().String("env-file", ".env", "Optional .env file loaded before reading the environment")
	serveCmd.Flags().String("log-level", "", "TRACE, DEBUG, INFO, WARN or ERROR (default from LOG_LEVEL)")
	return serveCmd
}

// RepairHandler prints parse.RepairTruncated of the input. A trailing line
// ending is set aside before the repair and written back after it, so a
// well-formed file comes out byte for byte.
func RepairHandler(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	body := strings.TrimRight(text, "\r\n")
	_, err = io.WriteString(cmd.OutOrStdout(), parse.RepairTruncated(body)+text[len(body):])
	return err
}

// ParseHandler prints the decoded value as indented JSON. The outcome goes
// to stderr so stdout stays machine readable.
func ParseHandler(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	// Shell pipelines append a newline that is not part of the document.
	text = strings.TrimRight(text, "\r\n")

	rawFallback, _ := cmd.Flags().GetString("fallback")
	var fallback any
	if err := json.Unmarshal([]byte(rawFallback), &fallback); err != nil {
		return fmt.Errorf("--fallback is not valid JSON: %w", err)
	}

	var value any
	var outcome string
	if lenient, _ := cmd.Flags().GetBool("lenient"); lenient {
		if value, err = parse.ParseStringAs[any](text); err != nil {
			return err
		}
		outcome = "lenient"
	} else {
		var result parse.Outcome
		value = parse.ParseWithFallbackContext(cmd.Context(), text, fallback, parse.WithOutcome(&result))
		outcome = result.String()
	}

	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "outcome:", outcome)
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return err
}

// ServeHandler runs the HTTP service until the command's context ends.
// Without an API key the service still starts; /v1/generate reports 503.
func ServeHandler(cmd *cobra.Command, _ []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(config.WithEnvFile(envFile))
	if err != nil {
		return err
	}

	logLevel, _ := cmd.Flags().GetString("log-level")
	observer := slogobs.New(slogobs.WithService("recover"), slogobs.WithLevelName(logLevel))

	generator, err := buildGenerator(cfg, observer)
	if err != nil {
		observer.Warn(cmd.Context(), "Generation disabled", observability.Error(err))
	}

	return server.New(cfg, observer, generator).Run(cmd.Context())
}

// buildGenerator wires the Gemini provider behind timeout, rotation, retry
// and logging middleware, outermost first.
func buildGenerator(cfg *config.Config, observer observability.Provider) (*client.Client, error) {
	if err := cfg.RequireGenerator(); err != nil {
		return nil, err
	}

	provider := gemini.New()
	if len(cfg.Models) > 0 {
		provider.WithDefaultModel(cfg.Models[0])
	}
	if cfg.BaseURL != "" {
		provider.WithBaseURL(cfg.BaseURL)
	}

	return client.New(provider,
		client.WithObserver(observer),
		client.WithMaxOutputTokens(cfg.MaxOutputTokens),
		client.WithMiddleware(
			middleware.NewTimeoutMiddleware(cfg.Timeout),
			middleware.NewRotationMiddleware(middleware.RotationConfig{
				Credentials: cfg.APIKeys,
				Models:      cfg.Models,
			}),
			middleware.NewRetryMiddleware(middleware.RetryConfig{}),
			middleware.NewLoggingMiddleware(nil, middleware.LogLevelStandard),
		),
	)
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	var reader io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", err
		}
		defer f.Close()
		reader = f
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
