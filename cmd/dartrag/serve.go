package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/dartrag/internal/api"
	"github.com/dgallion1/dartrag/internal/dart"
	"github.com/dgallion1/dartrag/internal/filing"
	"github.com/dgallion1/dartrag/internal/pathstore"
	"github.com/dgallion1/dartrag/internal/pipeline"
	"github.com/dgallion1/dartrag/internal/report"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the dartrag HTTP API.

The DART endpoints are enabled when dart_api_key is set. Chunks are written to
pathstore when pathstore_url is set; otherwise results stay on the job.

Examples:
  dartrag serve                  # listen on the configured port (8090)
  dartrag serve --port 3000      # override the port`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != "" {
			cfg.Port = servePort
		}
		if err := cfg.ValidateServe(); err != nil {
			log.Error("invalid configuration", "error", err)
			return err
		}

		var dartClient *dart.Client
		if cfg.DartAPIKey != "" {
			dartClient = dart.NewClient(cfg.DartBaseURL, cfg.DartAPIKey, retryPolicy(cfg, log), log)
			defer dartClient.Close()
		} else {
			log.Warn("dart_api_key not set, DART endpoints disabled")
		}

		// Typed nils would defeat the nil checks downstream.
		var (
			store pipeline.Store
			docs  api.DocumentStore
		)
		if cfg.PathstoreURL != "" {
			ps := pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
			defer ps.Close()
			store, docs = ps, ps
		} else {
			log.Warn("pathstore_url not set, chunks will not be stored")
		}

		extractor := filing.NewExtractor(log, nil)
		reports := report.NewProcessor(log, cfg.CompetitorThreshold)

		orch := pipeline.NewOrchestrator(cfg, extractor, reports, store, log)
		orch.Start(ctx)

		srv := api.NewServer(orch, dartClient, docs, log, cfg)
		httpServer := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      srv,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("starting dartrag", "port", cfg.Port)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				log.Error("server error", "error", err)
				orch.Stop()
				return err
			}
		case <-ctx.Done():
			log.Info("shutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = httpServer.Shutdown(shutdownCtx)
		orch.Stop()
		return err
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "port to listen on (overrides config)")
}
