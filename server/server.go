// Package server wires the router, middleware and routes of the MyMedic API
// and manages the HTTP server lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/giygas/mymedic-api/config"
	"github.com/giygas/mymedic-api/handlers"
	"github.com/giygas/mymedic-api/interfaces"
	"github.com/giygas/mymedic-api/logging"
	"github.com/giygas/mymedic-api/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const rateLimiterCleanupInterval = 5 * time.Minute

// Server represents the HTTP server
type Server struct {
	server      *http.Server
	router      chi.Router
	handler     interfaces.HTTPHandler
	config      *config.Config
	rateLimiter *RateLimiter
}

// NewServer creates a server routing to handler.
func NewServer(cfg *config.Config, handler interfaces.HTTPHandler) *Server {
	router := chi.NewRouter()

	s := &Server{
		server: &http.Server{
			Handler:     router,
			Addr:        cfg.Address + ":" + cfg.Port,
			ReadTimeout: 15 * time.Second,
			// Assistant replies stream for up to the assistant timeout.
			WriteTimeout:   cfg.AssistantTimeout + 15*time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: int(cfg.MaxHeaderSize),
		},
		router:      router,
		handler:     handler,
		config:      cfg,
		rateLimiter: NewRateLimiter(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(LocalOnlyMiddleware) // Before RealIPMiddleware to see the original RemoteAddr
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(logging.Logger()))
	s.router.Use(metrics.Metrics)
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.rateLimiter.Middleware)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	h := s.handler

	s.router.Route("/medications", func(r chi.Router) {
		r.Get("/", h.ListMedications)
		r.Get("/suggest", h.SuggestMedications)
		r.Get("/categories", h.ListCategories)
		r.Get("/{id}", h.GetMedication)
	})

	s.router.Get("/compare", h.CompareMedications)
	s.router.Get("/interactions", h.QueryInteractions)
	s.router.Post("/interactions/check", h.CheckInteractions)
	s.router.Get("/patient", h.GetPatient)

	s.router.Get("/bookmarks", h.ListBookmarks)
	s.router.Put("/bookmarks/{id}", h.ToggleBookmark)

	s.router.Get("/preferences/theme", h.GetTheme)
	s.router.Put("/preferences/theme", h.SetTheme)
	s.router.Post("/preferences/theme/toggle", h.ToggleTheme)

	s.router.Route("/assistant/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Get("/{id}", h.GetSession)
		r.Post("/{id}/messages", h.SendMessage)
	})

	s.router.Get("/health", h.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondWithError(w, http.StatusNotFound, "Route not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

// Router exposes the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.rateLimiter.StartCleanup(rateLimiterCleanupInterval)

	logging.Info(fmt.Sprintf("Starting server at: %s", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")
	s.rateLimiter.Stop()

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}
