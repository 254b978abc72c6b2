package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/rtrwh-assessment-service/internal/adapter/nasapower"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/domain"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// AssessmentService is the core the JSON endpoints delegate to.
type AssessmentService interface {
	ResolveContext(ctx context.Context, lat, lon float64) (domain.ResolvedContext, error)
	GetRainfall(ctx context.Context, lat, lon float64) (domain.RainfallResult, error)
	GetGroundwater(ctx context.Context, lat, lon float64) (domain.Groundwater, error)
	Assess(ctx context.Context, req domain.AssessmentRequest) (domain.AssessmentResult, error)
}

// HourlyProxy forwards raw hourly precipitation queries upstream.
type HourlyProxy interface {
	Proxy(ctx context.Context, q nasapower.ProxyQuery) (json.RawMessage, error)
}

// Info is reported by the root metadata endpoint.
type Info struct {
	Name        string
	Version     string
	Environment string
}

// Deps groups the collaborators behind the routes. Ready may be nil, in
// which case /readyz always reports ready. Clock defaults to the real clock.
type Deps struct {
	Service AssessmentService
	Proxy   HourlyProxy
	Ready   ReadinessChecker
	Info    Info
	Clock   clockwork.Clock
}

// Server exposes the assessment API plus health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

var endpoints = []string{
	"GET /",
	"GET /health",
	"GET /readyz",
	"GET /metrics",
	"GET /test/boundaries",
	"GET /context?lat&lon",
	"GET /api/rainfall?lat&lon",
	"GET /api/groundwater?lat&lon",
	"GET /api/rainfall/nasa-hourly?start&end&lat&lon",
	"POST /assess",
}

// NewServer creates an HTTP server with the API and operational routes.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: logger,
	}

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", handleReady(deps.Ready))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/test/boundaries", s.handleBoundaries)
	r.Get("/context", s.handleContext)
	r.Post("/assess", s.handleAssess)
	r.Route("/api", func(r chi.Router) {
		r.Get("/rainfall", s.handleRainfall)
		r.Get("/rainfall/nasa-hourly", s.handleNASAHourly)
		r.Get("/groundwater", s.handleGroundwater)
	})

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

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        s.deps.Info.Name,
		"version":     s.deps.Info.Version,
		"environment": s.deps.Info.Environment,
		"time":        s.deps.Clock.Now().UTC().Format(time.RFC3339),
		"endpoints":   endpoints,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
