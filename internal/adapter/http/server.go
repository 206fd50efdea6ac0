// Package http is the thin HTTP boundary: it calls the query facade and
// serializes JSON. All aggregation and caching logic lives behind the facade.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/volcano-globe-api/internal/catalog"
	"github.com/couchcryptid/volcano-globe-api/internal/domain"
)

// VolcanoService is the facade surface the handlers call.
type VolcanoService interface {
	Volcanoes(ctx context.Context) (domain.CatalogSnapshot, error)
	RefreshEruptions() time.Time
	EruptionSummary(ctx context.Context) catalog.EruptionSummary
	CheckReadiness(ctx context.Context) error
}

// Server exposes the volcano API plus health, readiness, and metrics routes.
type Server struct {
	httpServer      *http.Server
	svc             VolcanoService
	refreshInterval time.Duration
	logger          *slog.Logger
}

// NewServer creates the API server. refreshInterval is the eruption cache TTL,
// reported to clients on the eruption status endpoint.
func NewServer(addr string, svc VolcanoService, refreshInterval time.Duration, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:             svc,
		refreshInterval: refreshInterval,
		logger:          logger,
	}

	mux.HandleFunc("GET /api/volcanoes", s.handleVolcanoes)
	mux.HandleFunc("POST /api/volcanoes/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/eruptions", s.handleEruptions)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// Response shapes.

type volcanoListResponse struct {
	Volcanoes   []domain.Volcano `json:"volcanoes"`
	LastUpdated string           `json:"lastUpdated"`
	TotalCount  int              `json:"totalCount"`
}

type refreshResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type eruptingVolcano struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"startDate,omitempty"`
}

type eruptionStatusResponse struct {
	EruptingCount     int               `json:"eruptingCount"`
	EruptingVolcanoes []eruptingVolcano `json:"eruptingVolcanoes"`
	DataSource        string            `json:"dataSource"`
	RefreshInterval   string            `json:"refreshInterval"`
	Timestamp         string            `json:"timestamp"`
}

// handleVolcanoes serves the merged catalog. The facade always supplies a
// non-empty list; a non-nil error means it is the degraded fallback, reported
// as a 500 so careful clients can detect staleness while still rendering.
func (s *Server) handleVolcanoes(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Volcanoes(r.Context())

	status := http.StatusOK
	if err != nil {
		s.logger.Error("serving degraded volcano list", "error", err)
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, volcanoListResponse{
		Volcanoes:   snap.Volcanoes,
		LastUpdated: snap.FetchedAt.UTC().Format(time.RFC3339),
		TotalCount:  len(snap.Volcanoes),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	ts := s.svc.RefreshEruptions()
	s.logger.Info("eruption cache invalidated by request")

	writeJSON(w, http.StatusOK, refreshResponse{
		Success:   true,
		Message:   "eruption cache invalidated; next read refetches",
		Timestamp: ts.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleEruptions(w http.ResponseWriter, r *http.Request) {
	summary := s.svc.EruptionSummary(r.Context())

	volcanoes := make([]eruptingVolcano, 0, len(summary.Eruptions))
	for _, e := range summary.Eruptions {
		volcanoes = append(volcanoes, eruptingVolcano{
			ID:        e.VolcanoID,
			Name:      e.VolcanoName,
			StartDate: e.StartDate,
		})
	}

	writeJSON(w, http.StatusOK, eruptionStatusResponse{
		EruptingCount:     summary.Count,
		EruptingVolcanoes: volcanoes,
		DataSource:        "Smithsonian Global Volcanism Program",
		RefreshInterval:   s.refreshInterval.String(),
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.svc.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
