// Package api exposes the aggregated material dataset over HTTP. Query
// endpoints read the last completed snapshot; POST /scrape runs a fresh
// aggregation on demand.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"materialworker/internal/scraper"
	"materialworker/logger"
	"materialworker/services/storage"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Aggregator is the slice of the scraper aggregator the API needs
type Aggregator interface {
	ScrapeAll(ctx context.Context, req scraper.ScrapeRequest) []scraper.ProductRecord
	Suppliers() []string
	SupplierName(id string) (string, bool)
}

// Server serves the query API
type Server struct {
	addr       string
	aggregator Aggregator
	snapshot   *storage.Snapshot
	store      *storage.Store
	metrics    *scraper.Metrics
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer creates a new API server
func NewServer(addr string, aggregator Aggregator, snapshot *storage.Snapshot, store *storage.Store, metrics *scraper.Metrics) *Server {
	s := &Server{
		addr:       addr,
		aggregator: aggregator,
		snapshot:   snapshot,
		store:      store,
		metrics:    metrics,
		log:        logger.ForAPI(),
	}
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.routes(),
		// Scrape-on-demand requests can be slow; only header reads are
		// bounded here.
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /materials", s.handleMaterials)
	mux.HandleFunc("GET /materials/{category}", s.handleMaterialsByCategory)
	mux.HandleFunc("GET /materials/supplier/{supplier}", s.handleMaterialsBySupplier)
	mux.HandleFunc("GET /categories", s.handleCategories)
	mux.HandleFunc("GET /suppliers", s.handleSuppliers)
	mux.HandleFunc("POST /scrape", s.handleScrape)
	if registry := s.metrics.Registry(); registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	return mux
}

// Handler exposes the routing table, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.addr).Msg("API server listening")
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{
		Status:  "error",
		Message: message,
	})
}
