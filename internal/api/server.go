// Package api provides the HTTP server for numgen's serve mode.
// It exposes country resolution, numbering-plan lookups and generation runs
// as JSON (or CSV) endpoints.
package api

import (
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/maypok86/otter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tutu-network/numgen/internal/app"
	"github.com/tutu-network/numgen/internal/domain"
	"github.com/tutu-network/numgen/internal/health"
	"github.com/tutu-network/numgen/internal/logger"
)

// Server is the numgen HTTP API server.
type Server struct {
	svc            *app.Service
	log            *logger.Logger
	version        string
	maxCount       int
	corsOrigins    []string
	metricsEnabled bool
	health         *health.Checker
	resolutions    otter.Cache[string, domain.CountryResolution]
}

// NewServer creates a new API server. cacheSize bounds the resolution cache.
func NewServer(svc *app.Service, log *logger.Logger, maxCount, cacheSize int) *Server {
	if cacheSize < 1 {
		cacheSize = 1
	}
	cache, err := otter.MustBuilder[string, domain.CountryResolution](cacheSize).
		Cost(func(_ string, _ domain.CountryResolution) uint32 { return 1 }).
		Build()
	if err != nil {
		panic("api: failed to create resolution cache: " + err.Error())
	}
	return &Server{
		svc:         svc,
		log:         log,
		version:     "dev",
		maxCount:    maxCount,
		corsOrigins: []string{"*"},
		resolutions: cache,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetVersion sets the version reported by /api/version.
func (s *Server) SetVersion(v string) { s.version = v }

// SetHealth attaches a checker whose results /health reports.
func (s *Server) SetHealth(c *health.Checker) { s.health = c }

// SetCORSOrigins sets the allowed origins. "*" allows any.
func (s *Server) SetCORSOrigins(origins []string) { s.corsOrigins = origins }

// Close releases the resolution cache.
func (s *Server) Close() { s.resolutions.Close() }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))
	r.Use(s.corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": s.version,
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/resolve", s.handleResolve)
		r.Get("/regions/{code}", s.handleRegions)
		r.Get("/lengths/{region}", s.handleLengths)
		r.Post("/generate", s.handleGenerate)
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// handleHealth reports "ok", or "degraded" with 503 when a check fails.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status, code := "ok", http.StatusOK
	if !s.health.IsHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": s.health.Statuses(),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for browser clients.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case slices.Contains(s.corsOrigins, "*"):
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.corsOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
