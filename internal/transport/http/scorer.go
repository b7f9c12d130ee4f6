package http

import (
	"context"

	"distresscli/internal/distress"
	"distresscli/pkg/contracts/domain"
)

// Scorer is the engine surface the HTTP handlers depend on
type Scorer interface {
	Score(ctx context.Context, set domain.StatementSet) distress.Outcome
	ScoreBatch(ctx context.Context, sets []domain.StatementSet) ([]distress.Outcome, error)
	Calendar() distress.Calendar
}
