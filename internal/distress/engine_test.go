package distress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"distresscli/pkg/contracts/domain"
)

func testEngine(opts ...Option) *Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return NewEngine(DefaultCalendar(), logger, opts...)
}

// Golden scores, computed independently from the published formulas
func TestGoldenScores(t *testing.T) {
	tests := []struct {
		name      string
		positions []int
		values    func(int) quarterValues
		score     float64
		fScore    int
		mult      float64
	}{
		{"constant eight quarters", positionsFrom(0), constantQuarter, 20.2, 4, 0.7},
		{"constant four quarters", positionsFrom(4), constantQuarter, 22.2, 4, 0.7},
		{"constant single quarter", positionsFrom(7), constantQuarter, 22.2, 4, 0.7},
		{"year-ago quarter missing", []int{0, 1, 2, 4, 5, 6, 7}, constantQuarter, 22.2, 4, 0.7},
		{"steady growth", positionsFrom(0), growthQuarter, 64.3, 9, 1.0},
		{"steady decline", positionsFrom(0), declineQuarter, 3.3, 2, 0.7},
	}

	engine := testEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := engine.Score(context.Background(), buildSet("GOLD", tt.positions, tt.values))

			scored, ok := out.(Scored)
			require.True(t, ok, "expected a scored outcome, got %T", out)
			assert.Equal(t, tt.score, scored.Result.DistressScore)
			assert.Equal(t, tt.fScore, scored.Diagnostics.FScore)
			assert.Equal(t, tt.mult, scored.Diagnostics.InteractionMultiplier)
			assert.Equal(t, len(tt.positions), scored.Diagnostics.QuartersUsed)
		})
	}
}

func TestScoreDiagnostics(t *testing.T) {
	out := testEngine().Score(context.Background(), buildSet("TASC", positionsFrom(0), constantQuarter))
	report := out.Report()

	assert.Equal(t, "TASC", report.Ticker)
	assert.Equal(t, domain.ScoreStatusScored, report.Status)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), report.AssessmentDate)
	assert.Empty(t, report.Reason)

	d := report.Diagnostics
	require.NotNil(t, d)
	assert.InDelta(t, 17.002501195543196, d.ZContribution, tolerance)
	assert.InDelta(t, 11.666666666666666, d.FContribution, tolerance)
	assert.InDelta(t, 51.81913507073817, d.BaseScore, 1e-6)
	assert.InDelta(t, 36.273394549516716, d.AdjustedScore, 1e-6)
	assert.Equal(t, 1.0, d.VolatilityPenalty)
	assert.InDelta(t, -2.52679, d.MScore, 1e-4)
	assert.Equal(t, ZoneDistress, d.AltmanZone)
	assert.Equal(t, RiskLow, d.ManipulationRisk)
	assert.Len(t, d.ZNormalized, 4)
	require.NotNil(t, d.Beneish)
	assert.Equal(t, 1.0, d.Beneish.DSRI)
	assert.InDelta(t, d.ZContribution+d.FContribution+d.MContribution, d.BaseScore, tolerance)
}

func TestScoreInsufficient(t *testing.T) {
	engine := testEngine()
	full := buildSet("TEST", positionsFrom(0), constantQuarter)

	tests := []struct {
		name   string
		set    domain.StatementSet
		reason error
	}{
		{"all collections empty", domain.StatementSet{Ticker: "TEST"}, ErrMissingStatementData},
		{"no income", domain.StatementSet{Ticker: "TEST", Balance: full.Balance, Cash: full.Cash}, ErrMissingStatementData},
		{"no balance", domain.StatementSet{Ticker: "TEST", Income: full.Income, Cash: full.Cash}, ErrMissingStatementData},
		{"no cash flow", domain.StatementSet{Ticker: "TEST", Income: full.Income, Balance: full.Balance}, ErrMissingStatementData},
		{
			"periods outside calendar",
			domain.StatementSet{
				Ticker:  "TEST",
				Income:  []domain.StatementRecord{record("2019-12-31", map[string]float64{"revenue": 1})},
				Balance: []domain.StatementRecord{record("2019-12-31", map[string]float64{"total_assets": 1})},
				Cash:    []domain.StatementRecord{record("2019-12-31", map[string]float64{"operating_cash_flow": 1})},
			},
			ErrNoUsableQuarters,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := engine.Score(context.Background(), tt.set)

			ins, ok := out.(Insufficient)
			require.True(t, ok, "expected insufficient outcome, got %T", out)
			assert.True(t, errors.Is(ins.Reason, tt.reason))

			report := out.Report()
			assert.Equal(t, domain.NeutralDistressScore, report.DistressScore)
			assert.Equal(t, domain.ScoreStatusInsufficient, report.Status)
			assert.Equal(t, "TEST", report.Ticker)
			assert.NotEmpty(t, report.Reason)
			assert.Nil(t, report.Diagnostics)
		})
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	engine := testEngine()
	set := buildSet("TEST", positionsFrom(0), growthQuarter)

	first := engine.Score(context.Background(), set).Report()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, engine.Score(context.Background(), set).Report())
	}
}

func TestScoreIgnoresRecordOrder(t *testing.T) {
	engine := testEngine()
	set := buildSet("TEST", positionsFrom(0), declineQuarter)

	reversed := set
	reversed.Income = reverse(set.Income)
	reversed.Balance = reverse(set.Balance)
	reversed.Cash = reverse(set.Cash)

	assert.Equal(t,
		engine.Score(context.Background(), set).Report().DistressScore,
		engine.Score(context.Background(), reversed).Report().DistressScore,
	)
}

func reverse(in []domain.StatementRecord) []domain.StatementRecord {
	out := make([]domain.StatementRecord, len(in))
	for i, r := range in {
		out[len(in)-1-i] = r
	}
	return out
}

func TestScoreBatch(t *testing.T) {
	engine := testEngine(WithConcurrency(2))

	var sets []domain.StatementSet
	want := []float64{}
	for i := 0; i < 9; i++ {
		switch i % 3 {
		case 0:
			sets = append(sets, buildSet(fmt.Sprintf("C%d", i), positionsFrom(0), constantQuarter))
			want = append(want, 20.2)
		case 1:
			sets = append(sets, buildSet(fmt.Sprintf("G%d", i), positionsFrom(0), growthQuarter))
			want = append(want, 64.3)
		default:
			sets = append(sets, domain.StatementSet{Ticker: fmt.Sprintf("E%d", i)})
			want = append(want, domain.NeutralDistressScore)
		}
	}

	outcomes, err := engine.ScoreBatch(context.Background(), sets)
	require.NoError(t, err)
	require.Len(t, outcomes, len(sets))

	for i, out := range outcomes {
		report := out.Report()
		assert.Equal(t, sets[i].Ticker, report.Ticker)
		assert.Equal(t, want[i], report.DistressScore)
	}
}

func TestScoreBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sets := []domain.StatementSet{buildSet("TEST", positionsFrom(0), constantQuarter)}
	outcomes, err := testEngine().ScoreBatch(ctx, sets)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, outcomes)
}

func TestScoreBatchEmpty(t *testing.T) {
	outcomes, err := testEngine().ScoreBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestNewEngineDefaults(t *testing.T) {
	engine := NewEngine(Calendar{}, nil, WithConcurrency(0), WithMetrics(nil), WithTracer(nil))

	assert.False(t, engine.Calendar().IsZero())
	assert.Equal(t, DefaultConcurrency, engine.maxConcurrency)
	assert.NotNil(t, engine.metrics)
	assert.NotNil(t, engine.tracer)
}

func TestEngineMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	m, err := NewMetrics(provider.Meter(MeterName))
	require.NoError(t, err)

	engine := testEngine(WithMetrics(m))
	engine.Score(context.Background(), buildSet("A", positionsFrom(0), constantQuarter))
	engine.Score(context.Background(), buildSet("B", positionsFrom(0), growthQuarter))
	engine.Score(context.Background(), domain.StatementSet{Ticker: "C"})

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	runs := map[string]int64{}
	var scoreCount uint64
	var durationSeen bool
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			switch metric.Name {
			case "distress_scoring_runs_total":
				sum, ok := metric.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				for _, dp := range sum.DataPoints {
					v, _ := dp.Attributes.Value("outcome")
					runs[v.AsString()] = dp.Value
				}
			case "distress_score":
				hist, ok := metric.Data.(metricdata.Histogram[float64])
				require.True(t, ok)
				for _, dp := range hist.DataPoints {
					scoreCount += dp.Count
				}
			case "distress_scoring_duration_seconds":
				durationSeen = true
			}
		}
	}

	assert.Equal(t, int64(2), runs[string(domain.ScoreStatusScored)])
	assert.Equal(t, int64(1), runs[string(domain.ScoreStatusInsufficient)])
	assert.Equal(t, uint64(2), scoreCount)
	assert.True(t, durationSeen)
}

func TestEngineTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer provider.Shutdown(context.Background())

	engine := testEngine(WithTracer(provider.Tracer(TracerName)))
	engine.Score(context.Background(), buildSet("TASC", positionsFrom(0), constantQuarter))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "distress.Score", spans[0].Name())

	attrs := map[string]interface{}{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "TASC", attrs["ticker"])
	assert.Equal(t, 20.2, attrs["distress_score"])
	assert.Equal(t, "scored", attrs["status"])
}
