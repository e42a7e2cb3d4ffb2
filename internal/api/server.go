// Package api exposes profile inspection and dry-run configuration over a
// small HTTP API.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ovpnclient/tunprop/internal/log"
)

// Server represents the API server.
type Server struct {
	router      *chi.Mux
	httpServer  *http.Server
	profilePath string
	startedAt   time.Time
}

// NewServer creates a new API server serving the given profile.
func NewServer(profilePath string, bindAddr string) *Server {
	s := &Server{
		profilePath: profilePath,
		router:      chi.NewRouter(),
		startedAt:   time.Now(),
	}

	s.router.Use(Recovery)
	s.router.Use(Logger)
	s.router.Use(JSONContentType)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         bindAddr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/profile", s.handleProfile)
		r.Post("/preview", s.handlePreview)
		r.Post("/check/dns", s.handleCheckDNS)
	})

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// Handler returns the HTTP handler, usable without a listening server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server and blocks until shutdown.
func (s *Server) Start() error {
	log.Infof("[API] Starting server on %s", s.httpServer.Addr)
	log.Infof("[API] Example: curl http://%s/api/v1/status", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the API server.
func (s *Server) Stop(ctx context.Context) error {
	log.Infof("[API] Shutting down server...")
	return s.httpServer.Shutdown(ctx)
}
