// Package server exposes an engine over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/hanpama/gqlhello/internal/engine"
)

const (
	// Addr is the fixed listen address.
	Addr = ":4000"
	// Path is the fixed GraphQL endpoint.
	Path = "/graphql"
)

// Config holds server configuration.
type Config struct {
	Pretty       bool
	Timeout      time.Duration
	MaxBodyBytes int64
	CORSOrigins  []string
	Gzip         bool
	GraphiQL     bool
}

// Server is the HTTP server of the service.
type Server struct {
	cfg      Config
	engine   *engine.Engine
	logger   *otelzap.Logger
	gatherer prometheus.Gatherer
}

// New creates a new server instance. Metrics are served from gatherer.
func New(cfg Config, eng *engine.Engine, logger *otelzap.Logger, gatherer prometheus.Gatherer) *Server {
	return &Server{cfg: cfg, engine: eng, logger: logger, gatherer: gatherer}
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	opts := []Option{
		WithTimeout(s.cfg.Timeout),
		WithMaxBodyBytes(s.cfg.MaxBodyBytes),
		WithGraphiQL(s.cfg.GraphiQL),
		WithEndpoint(Path),
	}
	if s.cfg.Pretty {
		opts = append(opts, WithPretty())
	}
	if len(s.cfg.CORSOrigins) > 0 {
		opts = append(opts, WithCORS(s.cfg.CORSOrigins...))
	}

	var gql http.Handler = NewHandler(s.engine, opts...)
	if s.cfg.Gzip {
		gql = gzhttp.GzipHandler(gql)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.Handle(Path, gql)
	return mux
}

// Run listens on Addr and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.String("addr", ln.Addr().String()), zap.String("path", Path))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
