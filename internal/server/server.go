// Package server implements `distmeta serve`: a small package index that
// publishes descriptors and answers in the shape of the PyPI JSON API, so
// `distmeta check --index-url` can resolve requirements against it.
//
// Routes:
//
//	GET  /healthz
//	GET  /pypi/{name}/json
//	GET  /pypi/{name}/{version}/json
//	GET  /pypi/{name}/{version}/PKG-INFO
//	POST /descriptors
//	GET  /metrics
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/distmeta/internal/metrics"
	"github.com/matzehuels/distmeta/pkg/store"
)

// maxBodyBytes caps POST /descriptors payloads.
const maxBodyBytes = 4 << 20

// Options configures [Server.ListenAndServe].
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Server serves descriptors from a store.
type Server struct {
	store   store.Store
	logger  *log.Logger
	metrics *metrics.Metrics
}

// New creates a server. A nil metrics disables /metrics; a nil logger uses
// log.Default().
func New(st store.Store, logger *log.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{store: st, logger: logger, metrics: m}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(s.withLogging)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", s.health)

	router.Route("/pypi/{name}", func(r chi.Router) {
		r.Get("/json", s.project)
		r.Get("/{version}/json", s.release)
		r.Get("/{version}/PKG-INFO", s.pkgInfo)
	})

	router.Post("/descriptors", s.publish)

	if s.metrics != nil {
		router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
	})
	return router
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, opts Options) error {
	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, opts)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, opts Options) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("serving", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	timeout := opts.ShutdownTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
