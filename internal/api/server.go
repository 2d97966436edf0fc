package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dgallion1/dartrag/internal/config"
	"github.com/dgallion1/dartrag/internal/dart"
	"github.com/dgallion1/dartrag/internal/pathstore"
	"github.com/dgallion1/dartrag/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DocumentStore lists and deletes stored documents. *pathstore.Client
// implements it.
type DocumentStore interface {
	ListDocuments(ctx context.Context, corpCode string) ([]pathstore.DocumentMeta, error)
	DeleteDocument(ctx context.Context, corpCode, docID string) error
}

// Server is the HTTP API server for dartrag.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	dart         *dart.Client
	docs         DocumentStore
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. dartClient and docs may
// be nil; their endpoints then answer 503.
func NewServer(orch *pipeline.Orchestrator, dartClient *dart.Client, docs DocumentStore, log *slog.Logger, cfg config.Config) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		orchestrator: orch,
		dart:         dartClient,
		docs:         docs,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/filings", s.handleFilingUpload)
		r.Post("/api/reports", s.handleReportUpload)
		r.Post("/api/sections", s.handleSections)
		r.Post("/api/dart/filings", s.handleDartFetch)

		r.Get("/api/jobs/{jobID}/status", s.handleJobStatus)
		r.Get("/api/jobs/{jobID}/result", s.handleJobResult)

		r.Get("/api/companies/{corpCode}/documents", s.handleListDocuments)
		r.Delete("/api/companies/{corpCode}/documents/{docID}", s.handleDeleteDocument)

		r.Get("/api/stats/dart", s.handleDartStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
