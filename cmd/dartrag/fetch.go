package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dgallion1/dartrag/internal/dart"
	"github.com/dgallion1/dartrag/internal/filing"
	"github.com/dgallion1/dartrag/internal/parser"
)

var (
	fetchCorp  string
	fetchYear  int
	fetchCodes []string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the latest periodic report from DART and segment it",
	Long: `Find the newest periodic report a company filed in the given year, download
and unpack the original document, then print its sections.

Report codes: 11011 annual, 11012 half-year, 11013 Q1, 11014 Q3.

Examples:
  dartrag fetch --corp 00126380 --year 2024
  dartrag fetch --corp 00126380 --year 2024 --codes 11012,11014`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.ValidateFetch(); err != nil {
			return err
		}
		codes := fetchCodes
		if len(codes) == 0 {
			codes = cfg.TargetReportCodes
		}

		client := dart.NewClient(cfg.DartBaseURL, cfg.DartAPIKey, retryPolicy(cfg, log), log)
		defer client.Close()

		dir := filepath.Join(cfg.DataDir, "dart", fetchCorp, strconv.Itoa(fetchYear))
		fetched, err := client.Fetch(ctx, fetchCorp, fetchYear, codes, dir)
		if err != nil {
			return err
		}

		p, err := parser.ForFile(fetched.ReportPath)
		if err != nil {
			return err
		}
		data, err := fetched.ReadReport()
		if err != nil {
			return err
		}
		root, err := p.Parse(bytes.NewReader(data), filepath.Base(fetched.ReportPath))
		if err != nil {
			return fmt.Errorf("parse %s: %w", fetched.ReportPath, err)
		}

		meta := filing.Meta{
			DocID:    fetched.Filing.ReceiptNo,
			CorpCode: fetchCorp,
			CorpName: fetched.Filing.CorpName,
		}
		sections := filing.NewExtractor(log, nil).Segment(root, meta)
		log.Info("segmented filing", "rcept_no", meta.DocID, "sections", len(sections))

		return output(map[string]any{
			"filing":      fetched.Filing,
			"report_path": fetched.ReportPath,
			"sections":    sections,
		})
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchCorp, "corp", "", "DART corporation code (8 digits)")
	fetchCmd.Flags().IntVar(&fetchYear, "year", 0, "filing year")
	fetchCmd.Flags().StringSliceVar(&fetchCodes, "codes", nil, "report codes to search (default: target_report_codes)")
	_ = fetchCmd.MarkFlagRequired("corp")
	_ = fetchCmd.MarkFlagRequired("year")
}
