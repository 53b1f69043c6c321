// Package server implements the readstack HTTP figure server.
//
// The server renders the tracks of one configuration for any region a
// client asks for. All requests share one [pipeline.Runner], so layouts and
// artifacts cached for one client are served to the next.
//
// # Endpoints
//
//	GET /healthz                                 liveness probe
//	GET /v1/figure?region=chr:start-end&format=  rendered figure (svg, png, pdf, json)
//	GET /v1/coverage?region=...&track=           depth array and summary
//	GET /v1/layout?region=...&track=             row placements
//
// Errors are returned as JSON objects {"code": ..., "message": ...} with a
// status derived from the error code.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/pipeline"
)

// DefaultRequestTimeout bounds a single request.
const DefaultRequestTimeout = time.Minute

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Server serves figures for a fixed track configuration.
type Server struct {
	runner  *pipeline.Runner
	base    pipeline.Options
	logger  *log.Logger
	timeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger (default: discard).
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRequestTimeout sets the per-request timeout (default DefaultRequestTimeout).
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a server that renders the tracks of base. base.Region and
// base.Formats are ignored; they come from each request. The tracks are
// validated once here so that a bad configuration fails at startup.
func New(runner *pipeline.Runner, base pipeline.Options, opts ...Option) (*Server, error) {
	s := &Server{
		runner:  runner,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		timeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	if len(base.Tracks) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no tracks configured")
	}
	base.Tracks = slices.Clone(base.Tracks)
	for i := range base.Tracks {
		if err := pipeline.ValidateTrack(&base.Tracks[i]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "tracks[%d]", i)
		}
	}
	if base.MaxRegionWidth == 0 {
		base.MaxRegionWidth = pipeline.DefaultMaxRegionWidth
	}
	base.Logger = s.logger
	s.base = base
	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/figure", s.handleFigure)
		r.Get("/coverage", s.handleCoverage)
		r.Get("/layout", s.handleLayout)
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
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("serving figures", "addr", addr, "tracks", len(s.base.Tracks))

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// options returns a private copy of the base options for one request.
func (s *Server) options(region string) pipeline.Options {
	opts := s.base
	opts.Region = region
	opts.Tracks = slices.Clone(s.base.Tracks)
	opts.Formats = nil
	return opts
}
