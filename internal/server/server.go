// Package server provides the HTTP API for Radca.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/civiclab/radca/internal/catalog"
	"github.com/civiclab/radca/internal/config"
	"github.com/civiclab/radca/internal/pipeline"
	"github.com/civiclab/radca/internal/storage"
	"github.com/civiclab/radca/internal/vectordb"
)

// Server is the HTTP server for the Radca API.
type Server struct {
	pipeline *pipeline.Pipeline
	catalog  *catalog.Catalog
	store    vectordb.Store
	manifest *storage.Manifest
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies. The manifest may
// be nil; the status endpoint then omits ingest counts.
func NewServer(
	p *pipeline.Pipeline,
	cat *catalog.Catalog,
	store vectordb.Store,
	manifest *storage.Manifest,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		pipeline: p,
		catalog:  cat,
		store:    store,
		manifest: manifest,
		config:   cfg,
		logger:   logger,
	}
}

// Routes builds the router. Exposed separately so tests can drive handlers
// without binding a port.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Post("/api/v1/ask", s.handleAsk)
	r.Get("/ask", s.handleAskGet)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
