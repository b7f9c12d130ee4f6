package distress

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is the instrumentation scope of the engine metrics
const MeterName = "distresscli/distress"

// Metrics holds the OpenTelemetry instruments recorded by the Engine
type Metrics struct {
	runs     metric.Int64Counter
	scores   metric.Float64Histogram
	duration metric.Float64Histogram
}

// NewMetrics creates the engine instruments on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runs, err := meter.Int64Counter("distress_scoring_runs_total",
		metric.WithDescription("Scoring runs by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create runs counter: %w", err)
	}

	scores, err := meter.Float64Histogram("distress_score",
		metric.WithDescription("Distribution of computed distress scores"),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90),
	)
	if err != nil {
		return nil, fmt.Errorf("create score histogram: %w", err)
	}

	duration, err := meter.Float64Histogram("distress_scoring_duration_seconds",
		metric.WithDescription("Wall time of one scoring run"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	return &Metrics{runs: runs, scores: scores, duration: duration}, nil
}

// noopMetrics returns instruments that discard every measurement
func noopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter(MeterName))
	return m
}

// record stores one finished run
func (m *Metrics) record(ctx context.Context, out Outcome, elapsed time.Duration) {
	status := string(out.Report().Status)
	m.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", status)))
	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("outcome", status)))

	if s, ok := out.(Scored); ok {
		m.scores.Record(ctx, s.Result.DistressScore)
	}
}
