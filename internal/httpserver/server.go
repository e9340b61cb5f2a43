// Package httpserver exposes the bookmark codec and reconciler over HTTP.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/nikbrunner/bmsort/internal/httpserver/handlers"
	"github.com/nikbrunner/bmsort/internal/httpserver/mw"
	"github.com/nikbrunner/bmsort/internal/logger"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http   *http.Server
	logger logger.Logger
}

// NewRouter builds the router with global middlewares and all routes.
func NewRouter(d handlers.Deps) http.Handler {
	r := chi.NewRouter()

	// preflight requests never reach the routes
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: d.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
			ExposedHeaders: []string{"Content-Disposition", handlers.OmittedHeader},
		}).Handler)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	// suggestion calls wait on the remote model
	r.Use(middleware.Timeout(90 * time.Second))
	r.Use(mw.Log(d.Logger))

	r.Get("/healthz", handlers.Healthz(d))

	r.Route("/api", func(r chi.Router) {
		r.Use(mw.LimitBody(handlers.MaxBodyBytes))
		r.Post("/parse", handlers.Parse(d))
		r.Post("/export", handlers.Export(d))
		r.Post("/proposal", handlers.ApplyProposal(d))
		r.Post("/suggest", handlers.Suggest(d))
		r.Post("/actions", handlers.ApplyActions(d))
	})

	return r
}

// New builds the HTTP server listening on addr.
func New(addr string, d handlers.Deps) *Server {
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}

	s := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(d),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{http: s, logger: d.Logger}
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.logger.Infof("HTTP server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	// http.ErrServerClosed is expected on graceful shutdown.
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}
