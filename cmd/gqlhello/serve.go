package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/hanpama/gqlhello/internal/config"
	"github.com/hanpama/gqlhello/internal/engine"
	"github.com/hanpama/gqlhello/internal/eventbus"
	"github.com/hanpama/gqlhello/internal/hello"
	"github.com/hanpama/gqlhello/internal/otel"
	"github.com/hanpama/gqlhello/internal/server"
	"github.com/hanpama/gqlhello/internal/telemetry"
)

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	shutdown, err := otel.Setup(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	defer telemetry.NewMetrics(promReg).Subscribe()()
	defer telemetry.LogEvents(logger)()

	eng, err := newServerEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	logger.Info("Starting gqlhello",
		zap.String("addr", server.Addr),
		zap.String("version", cfg.Version),
	)
	logger.Info("Now browse to localhost" + server.Addr + server.Path)

	srv := server.New(server.Config{
		Pretty:       cfg.Pretty,
		Timeout:      cfg.Timeout,
		MaxBodyBytes: cfg.MaxBodyBytes,
		CORSOrigins:  cfg.CORSOrigins,
		Gzip:         cfg.Gzip,
		GraphiQL:     true,
	}, eng, logger, promReg)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func newServerEngine(cfg *config.Config, logger *otelzap.Logger) (*engine.Engine, error) {
	reg, err := hello.ServerRegistry()
	if err != nil {
		logger.Error("invalid schema", zap.Error(err))
		return nil, err
	}
	eng, err := engine.New(reg, hello.ServerRoot(),
		engine.WithIntrospection(cfg.Introspection),
		engine.WithQueryCache(cfg.QueryCacheSize),
		engine.WithMaxConcurrency(cfg.MaxConcurrency),
	)
	if err != nil {
		logger.Error("invalid schema", zap.Error(err))
		return nil, err
	}
	return eng, nil
}
