// Package server exposes the pipeline over HTTP.
//
// Routes:
//
//	GET /healthz                        liveness probe, returns "ok"
//	GET /api/v1/sequence/{number}       layout of the sequence graph
//	GET /api/v1/inverse/{number}?depth= layout of the inverse tree
//	GET /metrics                        Prometheus exposition
//
// The graph routes return layout JSON by default; ?format=svg or ?format=dot
// return the rendered document instead, and ?viz=nodelink selects the
// Graphviz renderer. Errors are JSON objects with a code and a message.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/collatz/pkg/collatz"
	"github.com/matzehuels/collatz/pkg/pipeline"
)

// DefaultMaxDepth bounds inverse tree requests.
const DefaultMaxDepth = 20

// Options configures a Server.
type Options struct {
	// Defaults holds the layout and render settings applied to every
	// request before query parameters.
	Defaults pipeline.Options

	// DefaultDepth is used when a request has no depth parameter.
	DefaultDepth int

	// MaxDepth is the largest depth a request may ask for.
	MaxDepth int

	// Metrics serves /metrics. Nil uses promhttp.Handler().
	Metrics http.Handler
}

// Server routes API requests to a pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options
	router chi.Router
}

// New creates a server. Zero depth options take their defaults.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if opts.DefaultDepth <= 0 {
		opts.DefaultDepth = collatz.DefaultDepth
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Metrics == nil {
		opts.Metrics = promhttp.Handler()
	}

	s := &Server{runner: runner, logger: logger, opts: opts}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", s.opts.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sequence/{number}", s.handleGraph(collatz.ModeSequence))
		r.Get("/inverse/{number}", s.handleGraph(collatz.ModeInverse))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" is not allowed on "+r.URL.Path)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down,
// giving in-flight requests up to shutdownTimeout to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
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

	s.logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
