// Package api serves marginalization over HTTP.
//
// Routes:
//
//	GET  /healthz                  liveness check
//	POST /v1/marginalize           marginalize a graph, optionally persisting it
//	POST /v1/check                 verify a graph against reference genomes
//	GET  /v1/marginals/{id}        load a stored marginal
//	GET  /v1/marginals?source=...  list the stored marginals of one input graph
//
// Errors are returned as {"code": ..., "message": ...} with the HTTP status
// derived from the error code. Every request gets an X-Request-Id and is
// reported to [observability.ServerHooks].
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pangraph/pkg/pipeline"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 20

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// New creates a server backed by runner. The runner's store, if any, serves
// the /v1/marginals routes.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/marginalize", s.handleMarginalize)
		r.Post("/check", s.handleCheck)
		r.Get("/marginals", s.handleListMarginals)
		r.Get("/marginals/{id}", s.handleGetMarginal)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
