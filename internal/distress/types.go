package distress

import (
	"errors"
	"time"

	"distresscli/pkg/contracts/domain"
)

// Sentinel reasons carried by Insufficient outcomes
var (
	// ErrMissingStatementData means one of the three statement collections was empty
	ErrMissingStatementData = errors.New("missing statement data")
	// ErrNoUsableQuarters means no calendar quarter had both income and balance records
	ErrNoUsableQuarters = errors.New("no usable quarters")
)

// QuarterLabel is an opaque fiscal quarter key such as "Q2 2024"
type QuarterLabel string

// QuarterTarget pairs a label with the canonical period-end date string
type QuarterTarget struct {
	Label     QuarterLabel `json:"label" yaml:"label"`
	PeriodEnd string       `json:"period_end" yaml:"period_end"`
}

// QuarterSlot holds the records matched to one calendar quarter.
// Any of the records may be nil.
type QuarterSlot struct {
	Target  QuarterTarget
	Income  *domain.StatementRecord
	Balance *domain.StatementRecord
	Cash    *domain.StatementRecord
}

// Usable reports whether the quarter can produce a FeatureRow
func (s QuarterSlot) Usable() bool {
	return s.Income != nil && s.Balance != nil
}

// QuarterPanel is the aligned, chronologically ordered view of one entity
type QuarterPanel struct {
	Slots []QuarterSlot
}

// UsableQuarters counts slots with both income and balance matches
func (p QuarterPanel) UsableQuarters() int {
	n := 0
	for _, s := range p.Slots {
		if s.Usable() {
			n++
		}
	}
	return n
}

// FeatureRow contains the derived values for one usable quarter
type FeatureRow struct {
	Label    QuarterLabel
	Position int // index in the calendar, 0 = oldest

	Revenue            float64
	NetIncome          float64
	OperatingIncome    float64
	EBIT               float64
	TotalAssets        float64
	CurrentAssets      float64
	CurrentLiabilities float64
	RetainedEarnings   float64
	TotalLiabilities   float64
	WorkingCapital     float64
	BookEquity         float64
	OperatingCashFlow  float64
	HasCashFlow        bool
}

// AssetsBase is total assets for use as a ratio denominator
func (r FeatureRow) AssetsBase() float64 {
	if r.TotalAssets == 0 {
		return 1
	}
	return r.TotalAssets
}

// LiabilitiesBase is total liabilities for use as a ratio denominator
func (r FeatureRow) LiabilitiesBase() float64 {
	if r.TotalLiabilities == 0 {
		return 1
	}
	return r.TotalLiabilities
}

// Outcome is the result of one scoring run: either Scored or Insufficient
type Outcome interface {
	Report() domain.DistressReport
	outcome()
}

// Scored is a fully computed distress score
type Scored struct {
	Result      domain.DistressReport
	Diagnostics domain.Diagnostics
}

// Report returns the external result with diagnostics attached
func (s Scored) Report() domain.DistressReport {
	r := s.Result
	d := s.Diagnostics
	r.Diagnostics = &d
	return r
}

func (Scored) outcome() {}

// Insufficient is the neutral fallback used when the input cannot be scored
type Insufficient struct {
	Result domain.DistressReport
	Reason error
}

// Report returns the neutral result
func (i Insufficient) Report() domain.DistressReport {
	return i.Result
}

func (Insufficient) outcome() {}

// neutralReport builds the fixed neutral result for the given entity
func neutralReport(ticker string, assessed time.Time, reason error) Insufficient {
	r := domain.DistressReport{
		Ticker:         ticker,
		AssessmentDate: assessed,
		DistressScore:  domain.NeutralDistressScore,
		Status:         domain.ScoreStatusInsufficient,
	}
	if reason != nil {
		r.Reason = reason.Error()
	}
	return Insufficient{Result: r, Reason: reason}
}
