package telemetry

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hanpama/gqlhello/internal/eventbus"
	"github.com/hanpama/gqlhello/internal/events"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	GraphQLOperations  *prometheus.CounterVec
	GraphQLDuration    *prometheus.HistogramVec
	GraphQLFieldErrors prometheus.Counter
	QueryCacheHits     prometheus.Counter
}

// NewMetrics creates the service metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gqlhello_http_requests_total",
				Help: "Total number of HTTP requests by method and status",
			},
			[]string{"method", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gqlhello_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds by method",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		GraphQLOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gqlhello_graphql_operations_total",
				Help: "Total number of GraphQL operations by type and outcome",
			},
			[]string{"operation_type", "outcome"},
		),
		GraphQLDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gqlhello_graphql_operation_duration_seconds",
				Help:    "GraphQL operation duration in seconds by type",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation_type"},
		),
		GraphQLFieldErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "gqlhello_graphql_errors_total",
			Help: "Total number of errors reported in GraphQL responses",
		}),
		QueryCacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "gqlhello_query_cache_hits_total",
			Help: "Total number of operations served from the parsed query cache",
		}),
	}
}

// Subscribe records HTTP and GraphQL events from the global bus.
func (m *Metrics) Subscribe() (unsubscribe func()) {
	a := eventbus.Subscribe(func(_ context.Context, e events.HTTPFinish) {
		m.HTTPRequests.WithLabelValues(e.Method, strconv.Itoa(e.Status)).Inc()
		m.HTTPDuration.WithLabelValues(e.Method).Observe(e.Duration.Seconds())
	})
	b := eventbus.Subscribe(func(_ context.Context, e events.GraphQLFinish) {
		m.RecordOperation(e)
	})
	return func() { a(); b() }
}

// RecordOperation records one finished GraphQL operation.
func (m *Metrics) RecordOperation(e events.GraphQLFinish) {
	opType := e.OperationType
	outcome := "ok"
	switch {
	case opType == "":
		opType = "unknown"
		outcome = "rejected"
	case len(e.Errors) > 0:
		outcome = "partial"
	}
	m.GraphQLOperations.WithLabelValues(opType, outcome).Inc()
	m.GraphQLDuration.WithLabelValues(opType).Observe(e.Duration.Seconds())
	m.GraphQLFieldErrors.Add(float64(len(e.Errors)))
	if e.Cached {
		m.QueryCacheHits.Inc()
	}
}
