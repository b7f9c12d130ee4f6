package distress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"distresscli/pkg/contracts/domain"
)

// TracerName is the instrumentation scope of the engine spans
const TracerName = "distresscli/distress"

// DefaultConcurrency bounds ScoreBatch when no option overrides it
const DefaultConcurrency = 4

// ErrNonFiniteScore means the composite arithmetic produced NaN or Inf
var ErrNonFiniteScore = errors.New("non-finite composite score")

// Engine scores entities against a fixed quarter calendar.
// It holds no per-run state and is safe for concurrent use.
type Engine struct {
	calendar       Calendar
	logger         *slog.Logger
	metrics        *Metrics
	tracer         trace.Tracer
	maxConcurrency int
}

// Option configures an Engine
type Option func(*Engine)

// WithConcurrency sets the number of entities ScoreBatch scores at once
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxConcurrency = n
		}
	}
}

// WithMetrics records run counts, scores and durations on m
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithTracer overrides the global tracer
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// NewEngine creates an Engine. A zero calendar is replaced by DefaultCalendar.
func NewEngine(cal Calendar, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cal.IsZero() {
		cal = DefaultCalendar()
	}

	e := &Engine{
		calendar:       cal,
		logger:         logger.With(slog.String("component", "distress_engine")),
		metrics:        noopMetrics(),
		tracer:         otel.Tracer(TracerName),
		maxConcurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calendar returns the engine's quarter calendar
func (e *Engine) Calendar() Calendar {
	return e.calendar
}

// Score runs the full pipeline for one entity. It never fails: inputs that
// cannot be scored produce an Insufficient outcome with the neutral score.
func (e *Engine) Score(ctx context.Context, set domain.StatementSet) Outcome {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "distress.Score",
		trace.WithAttributes(attribute.String("ticker", set.Ticker)))
	defer span.End()

	out := e.score(ctx, set)

	e.metrics.record(ctx, out, time.Since(start))
	report := out.Report()
	span.SetAttributes(
		attribute.Float64("distress_score", report.DistressScore),
		attribute.String("status", string(report.Status)),
	)
	if ins, ok := out.(Insufficient); ok {
		span.AddEvent("insufficient_data", trace.WithAttributes(
			attribute.String("reason", ins.Reason.Error())))
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return out
}

func (e *Engine) score(ctx context.Context, set domain.StatementSet) Outcome {
	assessed := e.calendar.AssessmentDate()
	logger := e.logger.With(slog.String("ticker", set.Ticker))

	for _, kind := range domain.StatementKinds {
		if len(set.Records(kind)) == 0 {
			err := fmt.Errorf("%w: no %s statements", ErrMissingStatementData, kind)
			logger.DebugContext(ctx, "statement collection empty", slog.String("kind", string(kind)))
			return neutralReport(set.Ticker, assessed, err)
		}
	}

	panel := Align(set.Income, set.Balance, set.Cash, e.calendar)
	rows := ExtractFeatures(panel)
	logger.DebugContext(ctx, "aligned quarters",
		slog.Int("calendar_quarters", len(panel.Slots)),
		slog.Int("usable_quarters", len(rows)),
	)
	if len(rows) == 0 {
		return neutralReport(set.Ticker, assessed, ErrNoUsableQuarters)
	}

	z := Altman(rows)
	f := Piotroski(rows)
	m := Beneish(rows)
	c := Combine(rows, z, f, m)

	logger.DebugContext(ctx, "sub-scores computed",
		slog.Float64("z_contribution", z.Contribution),
		slog.Float64("f_contribution", f.Contribution),
		slog.Int("f_score", f.FScore),
		slog.Float64("m_contribution", m.Contribution),
		slog.Float64("interaction_multiplier", c.InteractionMultiplier),
		slog.Float64("volatility_penalty", c.VolatilityPenalty),
	)

	if math.IsNaN(c.Score) || math.IsInf(c.Score, 0) {
		return neutralReport(set.Ticker, assessed, ErrNonFiniteScore)
	}

	return Scored{
		Result: domain.DistressReport{
			Ticker:         set.Ticker,
			AssessmentDate: assessed,
			DistressScore:  c.Score,
			Status:         domain.ScoreStatusScored,
		},
		Diagnostics: diagnostics(rows, z, f, m, c),
	}
}

// ScoreBatch scores sets concurrently. Outcomes keep the input order.
// Only context cancellation is returned as an error.
func (e *Engine) ScoreBatch(ctx context.Context, sets []domain.StatementSet) ([]Outcome, error) {
	outcomes := make([]Outcome, len(sets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrency)

	for i := range sets {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = e.Score(gctx, sets[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("score batch: %w", err)
	}

	scored := 0
	for _, o := range outcomes {
		if _, ok := o.(Scored); ok {
			scored++
		}
	}
	e.logger.InfoContext(ctx, "batch scoring completed",
		slog.Int("entities", len(sets)),
		slog.Int("scored", scored),
		slog.Int("insufficient", len(sets)-scored),
	)

	return outcomes, nil
}

func diagnostics(rows []FeatureRow, z AltmanResult, f PiotroskiResult, m BeneishResult, c Composite) domain.Diagnostics {
	d := domain.Diagnostics{
		ZContribution:         z.Contribution,
		FContribution:         f.Contribution,
		MContribution:         m.Contribution,
		InteractionMultiplier: c.InteractionMultiplier,
		VolatilityPenalty:     c.VolatilityPenalty,
		BaseScore:             c.Base,
		AdjustedScore:         c.Adjusted,
		FScore:                f.FScore,
		Momentum:              f.Momentum,
		MScore:                m.MScore,
		ManipulationProb:      m.ManipulationProb,
		LatestZRaw:            z.LatestRaw(),
		LatestZNorm:           z.LatestNorm(),
		ZNormalized:           z.ZNorm,
		QuartersUsed:          len(rows),
		AltmanZone:            AltmanZone(z.LatestRaw()),
		ManipulationRisk:      m.Risk(),
	}
	if m.Computed {
		idx := m.Indices
		d.Beneish = &idx
	}
	return d
}
