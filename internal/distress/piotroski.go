package distress

import (
	"math"
)

const (
	// piotroskiMaxContribution scales the adjusted F-score into the base score
	piotroskiMaxContribution = 35.0
	// piotroskiNormalizer is the denominator of the adjusted F-score
	piotroskiNormalizer = 12.0
	// momentumLimit bounds the year-over-year net income trend
	momentumLimit = 3.0
	// momentumWeight is the share of the trend added to the raw F-score
	momentumWeight = 0.5
	// minGrowthHistory is the revenue history required for margin and turnover signals
	minGrowthHistory = 5
)

// PiotroskiSignals records which of the nine indicators were awarded
type PiotroskiSignals struct {
	PositiveNetIncome  bool
	PositiveCashFlow   bool
	ROAImproved        bool
	AccrualQuality     bool
	LeverageDecreased  bool
	LiquidityImproved  bool
	NoEquityIssuance   bool
	MarginImproved     bool
	TurnoverImproved   bool
	YearAgoResolved    bool
	GrowthHistoryReady bool
}

// Count is the raw F-score, an integer in [0, 9]
func (s PiotroskiSignals) Count() int {
	n := 0
	for _, awarded := range []bool{
		s.PositiveNetIncome,
		s.PositiveCashFlow,
		s.ROAImproved,
		s.AccrualQuality,
		s.LeverageDecreased,
		s.LiquidityImproved,
		s.NoEquityIssuance,
		s.MarginImproved,
		s.TurnoverImproved,
	} {
		if awarded {
			n++
		}
	}
	return n
}

// PiotroskiResult is the output of the Piotroski submodel
type PiotroskiResult struct {
	Signals      PiotroskiSignals
	FScore       int
	Momentum     float64 // clipped to [-3, 3]
	AdjustedF    float64
	Contribution float64
}

// Piotroski scores fundamental strength of the latest row against the row
// one year earlier. Indicators whose comparison quarter is missing are not
// awarded.
func Piotroski(rows []FeatureRow) PiotroskiResult {
	if len(rows) == 0 {
		return PiotroskiResult{}
	}

	latest := rows[len(rows)-1]
	prior, hasPrior := yearAgo(rows)

	s := PiotroskiSignals{
		PositiveNetIncome: latest.NetIncome > 0,
		PositiveCashFlow:  latest.OperatingCashFlow > 0,
		AccrualQuality:    latest.OperatingCashFlow > latest.NetIncome,
		// Equity issuance is not derived from the statements; always awarded.
		NoEquityIssuance:   true,
		YearAgoResolved:    hasPrior,
		GrowthHistoryReady: hasPrior && len(rows) >= minGrowthHistory,
	}

	if hasPrior {
		s.ROAImproved = returnOnAssets(latest) > returnOnAssets(prior)
		s.LeverageDecreased = leverage(latest) < leverage(prior)
		s.LiquidityImproved = currentRatio(latest) > currentRatio(prior)
	}

	if s.GrowthHistoryReady {
		s.MarginImproved = operatingMargin(latest) > operatingMargin(prior)
		s.TurnoverImproved = assetTurnover(latest) > assetTurnover(prior)
	}

	res := PiotroskiResult{Signals: s, FScore: s.Count()}
	if hasPrior {
		res.Momentum = earningsMomentum(latest.NetIncome, prior.NetIncome)
	}
	res.AdjustedF = float64(res.FScore) + momentumWeight*res.Momentum
	res.Contribution = res.AdjustedF / piotroskiNormalizer * piotroskiMaxContribution

	return res
}

// earningsMomentum is the relative net income change, clipped to ±3
func earningsMomentum(current, prior float64) float64 {
	if prior == 0 {
		return 0
	}
	return clamp((current-prior)/math.Abs(prior), -momentumLimit, momentumLimit)
}

func returnOnAssets(r FeatureRow) float64 {
	return r.NetIncome / r.AssetsBase()
}

func leverage(r FeatureRow) float64 {
	return r.TotalLiabilities / r.AssetsBase()
}

func currentRatio(r FeatureRow) float64 {
	return ratioOr(r.CurrentAssets, r.CurrentLiabilities, 1)
}

func operatingMargin(r FeatureRow) float64 {
	return ratioOr(r.OperatingIncome, r.Revenue, 0)
}

func assetTurnover(r FeatureRow) float64 {
	return r.Revenue / r.AssetsBase()
}
