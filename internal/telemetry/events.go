// Package telemetry configures logging and metrics and attaches them to the
// in-process event bus.
package telemetry

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/hanpama/gqlhello/internal/eventbus"
	"github.com/hanpama/gqlhello/internal/events"
	"github.com/hanpama/gqlhello/internal/reqid"
)

// LogEvents writes one log line per finished HTTP request and GraphQL
// operation.
func LogEvents(logger *otelzap.Logger) (unsubscribe func()) {
	a := eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		logger.Ctx(ctx).Info("http request",
			zap.String("request_id", e.RequestID),
			zap.String("method", e.Method),
			zap.String("path", e.Path),
			zap.Int("status", e.Status),
			zap.Int("operations", e.Operations),
			zap.Duration("duration", e.Duration),
		)
	})
	b := eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
		rid, _ := reqid.FromContext(ctx)
		fields := []zap.Field{
			zap.String("request_id", rid),
			zap.String("operation_name", e.OperationName),
			zap.String("operation_type", e.OperationType),
			zap.Int("errors", len(e.Errors)),
			zap.Bool("cached", e.Cached),
			zap.Duration("duration", e.Duration),
		}
		if e.OperationType == "" && len(e.Errors) > 0 {
			logger.Ctx(ctx).Warn("graphql request rejected", append(fields, zap.Error(e.Errors[0]))...)
			return
		}
		logger.Ctx(ctx).Debug("graphql operation", fields...)
	})
	return func() { a(); b() }
}
