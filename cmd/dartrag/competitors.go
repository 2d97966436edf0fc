package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/dartrag/internal/report"
)

var (
	competitorsCompany   string
	competitorsThreshold int
)

var competitorsCmd = &cobra.Command{
	Use:   "competitors <pdf>",
	Short: "Keep the competitor pages of an analyst report",
	Long: `Extract the text of every page of an analyst report PDF and print the
pages that mention enough competitor indicators (투자의견, Margin, Growth,
Price, Fundamentals, ...).

Examples:
  dartrag competitors fnguide_005930.pdf --company 005930
  dartrag competitors report.pdf --company 005930 --threshold 3 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		path := args[0]
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("report pdf: %w", err)
		}

		threshold := cfg.CompetitorThreshold
		if cmd.Flags().Changed("threshold") {
			threshold = competitorsThreshold
		}
		docs := report.NewProcessor(log, threshold).Process(path, competitorsCompany)

		return output(map[string]any{
			"source":    path,
			"threshold": threshold,
			"documents": docs,
		})
	},
}

func init() {
	competitorsCmd.Flags().StringVar(&competitorsCompany, "company", "", "stock code the report covers")
	competitorsCmd.Flags().IntVar(&competitorsThreshold, "threshold", 2, "minimum indicator count for a page to be kept")
	_ = competitorsCmd.MarkFlagRequired("company")
}
