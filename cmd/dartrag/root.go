package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/dartrag/internal/config"
	"github.com/dgallion1/dartrag/internal/retry"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "dartrag",
	Short: "Korean disclosure ingestion for retrieval pipelines",
	Long: `dartrag turns Korean corporate disclosures into retrieval-ready text.

It can:
  - download periodic reports from the DART OpenAPI
  - split filing markup into named sections (사업의 내용, 주요 제품 등)
  - keep only the competitor-related pages of analyst report PDFs
  - write company relationship matrices as .npz archives
  - serve all of the above over an authenticated HTTP API`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.dartrag/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return setOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(serveCmd, sectionsCmd, competitorsCmd, fetchCmd, matrixCmd)
}

// loadConfig reads configuration and builds the matching logger.
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, newLogger(cfg), nil
}

// newLogger writes to stderr so command output on stdout stays parseable.
func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func retryPolicy(cfg config.Config, log *slog.Logger) retry.Policy {
	return retry.Policy{
		Attempts: cfg.RetryAttempts,
		Wait:     cfg.RetryWait,
		OnRetry: func(attempt uint, err error) {
			log.Warn("dart request failed, retrying", "attempt", attempt, "error", err)
		},
	}
}
