// Package server exposes the read-only HTTP surface over the pipeline's
// latest snapshot: the flight list, pipeline status, and a health probe.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/flightwall/flightwall/internal/pipeline"
	"github.com/flightwall/flightwall/pkg/aeroapi"
	"github.com/flightwall/flightwall/pkg/config"
)

// Server holds the HTTP router and its dependencies
type Server struct {
	router  *chi.Mux
	runner  *pipeline.Runner
	cfg     *config.Config
	started time.Time
}

// New creates a Server over the given runner and configuration.
func New(runner *pipeline.Runner, cfg *config.Config) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		runner:  runner,
		cfg:     cfg,
		started: time.Now(),
	}
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	// Middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))

	// CORS so local display frontends can read the API
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/flights", s.handleGetFlights)
		r.Get("/status", s.handleGetStatus)
	})

	r.Get("/healthz", s.handleHealthz)
}

// handleGetFlights returns the latest completed cycle's enriched flights.
func (s *Server) handleGetFlights(w http.ResponseWriter, r *http.Request) {
	snap := s.runner.Latest()

	flights := snap.Flights
	if flights == nil {
		flights = []aeroapi.FlightDetail{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"flights":    flights,
		"count":      len(flights),
		"updated_at": snap.UpdatedAt,
		"cycle":      snap.Cycle,
	})
}

// handleGetStatus reports the pipeline configuration and progress.
func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.runner.Latest()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"running":        s.runner.IsRunning(),
		"cycle":          snap.Cycle,
		"last_update":    snap.UpdatedAt,
		"flight_count":   len(snap.Flights),
		"uptime_seconds": int(time.Since(s.started).Seconds()),
		"observer": map[string]interface{}{
			"name":      s.cfg.Observer.Name,
			"latitude":  s.cfg.Observer.Latitude,
			"longitude": s.cfg.Observer.Longitude,
		},
		"tracking": map[string]interface{}{
			"radius_km":             s.cfg.Tracking.RadiusKm,
			"poll_interval_seconds": s.cfg.Tracking.PollIntervalSeconds,
			"detail_fetch_budget":   s.cfg.Tracking.DetailFetchBudget,
		},
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
