package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
	// GoCollector registers Go runtime and process collectors.
	GoCollector bool
}

// Metrics exposes the prediction instruments and the /metrics handler.
//
// Exported series:
//   - inscost_predictions_total{segment,status}
//   - inscost_prediction_duration_seconds{segment}
type Metrics struct {
	provider *sdkmetric.MeterProvider
	registry *prometheus.Registry
	handler  http.Handler

	predictions metric.Int64Counter
	duration    metric.Float64Histogram
}

// InitMetrics initializes the Prometheus metrics exporter on a private registry.
func InitMetrics(cfg MetricsConfig) (*Metrics, error) {
	registry := prometheus.NewRegistry()
	if cfg.GoCollector {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
		promexporter.WithoutScopeInfo(),
		promexporter.WithoutTargetInfo(),
	)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	name := cfg.ServiceName
	if name == "" {
		name = "inscost"
	}
	meter := provider.Meter(name)

	predictions, err := meter.Int64Counter(
		"inscost_predictions",
		metric.WithDescription("Number of cost predictions by age segment and outcome."),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		"inscost_prediction_duration",
		metric.WithDescription("Prediction latency by age segment."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		provider:    provider,
		registry:    registry,
		handler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		predictions: predictions,
		duration:    duration,
	}, nil
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// ObservePrediction records one prediction.
func (m *Metrics) ObservePrediction(segment, status string, d time.Duration) {
	ctx := context.Background()
	seg := attribute.String("segment", segment)
	m.predictions.Add(ctx, 1, metric.WithAttributes(seg, attribute.String("status", status)))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(seg))
}

// Shutdown flushes and stops the meter provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}
