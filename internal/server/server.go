// Package server wires the HTTP routes, middleware and realtime endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"sports-week-api/internal/config"
	"sports-week-api/internal/handler"
	"sports-week-api/internal/metrics"
	"sports-week-api/internal/realtime"
	"sports-week-api/internal/service"
)

// HealthChecker reports whether the database is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies holds everything the routes need.
type Dependencies struct {
	Config             *config.Config
	PointsService      *service.PointsService
	LeaderboardService *service.LeaderboardService
	MatchService       *service.MatchService
	Hub                *realtime.Hub
	Health             HealthChecker
}

// Server is the HTTP front of the sports week API.
type Server struct {
	cfg    *config.Config
	router chi.Router
	http   *http.Server

	pointsHandler *handler.PointsHandler
	matchHandler  *handler.MatchHandler
	hub           *realtime.Hub
	health        HealthChecker
}

// New creates a Server with its routes registered.
func New(deps *Dependencies) (*Server, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	if deps.Config.Auth.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}

	s := &Server{
		cfg:           deps.Config,
		router:        chi.NewRouter(),
		pointsHandler: handler.NewPointsHandler(deps.PointsService, deps.LeaderboardService),
		matchHandler:  handler.NewMatchHandler(deps.MatchService),
		hub:           deps.Hub,
		health:        deps.Health,
	}

	s.registerMiddleware()
	s.registerRoutes()

	srv := deps.Config.Server
	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", srv.Port),
		Handler:      s.router,
		ReadTimeout:  srv.ReadTimeout,
		WriteTimeout: srv.WriteTimeout,
		IdleTimeout:  srv.IdleTimeout,
	}

	return s, nil
}

func (s *Server) registerMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(Recovery)
	s.router.Use(Logging)
	s.router.Use(metrics.Middleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) registerRoutes() {
	secret := []byte(s.cfg.Auth.JWTSecret)
	r := s.router

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	if s.hub != nil {
		r.Get("/ws", s.hub.ServeWS)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/points", func(r chi.Router) {
			r.Get("/leaderboard", s.pointsHandler.Leaderboard)
			r.Get("/leaderboard/detailed", s.pointsHandler.DetailedLeaderboard)
			r.Get("/faculty/{facultyID}/history", s.pointsHandler.FacultyHistory)

			r.Group(func(r chi.Router) {
				r.Use(Authenticate(secret))
				r.Use(RequireAdmin())
				r.Post("/calculate/{matchID}", s.pointsHandler.Calculate)
				r.Post("/apply/{matchID}", s.pointsHandler.Apply)
				r.Post("/recompute/{matchID}", s.pointsHandler.Recompute)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(secret))
			r.Use(RequireManager())

			r.Put("/matches/{matchID}/status", s.matchHandler.UpdateStatus)
			r.Put("/matches/{matchID}/winner", s.matchHandler.SetWinner)
			r.Post("/matches/{matchID}/finish", s.matchHandler.Finish)

			r.Put("/participants/{participantID}/score", s.matchHandler.UpdateScore)
			r.Put("/participants/{participantID}/draw", s.matchHandler.MarkDraw)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.HealthCheck(ctx); err != nil {
			log.Warn().Err(err).Msg("Health check failed")
			handler.Fail(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until the server is shut down.
func (s *Server) Start() error {
	log.Info().Str("addr", s.http.Addr).Msg("Starting HTTP server...")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests within the configured shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	log.Info().Msg("Stopping HTTP server...")
	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.http.Shutdown(ctx)
}
