package distress

import (
	"math"
)

const (
	// weakMultiplier dampens entities that are weak on both Altman and Piotroski
	weakMultiplier = 0.7
	// strongMultiplier boosts entities that are strong on both
	strongMultiplier = 1.2
	// weakFScoreBelow and strongFScoreAbove are strict F-score bounds
	weakFScoreBelow   = 5
	strongFScoreAbove = 7
	// volatilityHistory is the number of rows required for the volatility penalty
	volatilityHistory = 8
	// volatilityFloor is the share of the score that volatility cannot remove
	volatilityFloor = 0.6
	// logisticCenter and logisticSlope re-center the composite onto 0-100
	logisticCenter = 50.0
	logisticSlope  = 0.1
)

var (
	// weakZNorm is the neutral Altman threshold sigmoid(0)
	weakZNorm = sigmoid(0)
	// strongZNorm is the normalized value of a raw Z of 3
	strongZNorm = normalizeZ(3)
)

// Composite holds the final score with the adjustments that produced it
type Composite struct {
	Base                  float64
	InteractionMultiplier float64
	VolatilityPenalty     float64
	Adjusted              float64
	Score                 float64 // in [0, 100], one decimal
}

// Combine merges the three sub-scores and applies the interaction and
// volatility adjustments before logistic squashing.
func Combine(rows []FeatureRow, z AltmanResult, f PiotroskiResult, m BeneishResult) Composite {
	c := Composite{
		Base:                  z.Contribution + f.Contribution + m.Contribution,
		InteractionMultiplier: InteractionMultiplier(z.LatestNorm(), f.FScore),
		VolatilityPenalty:     VolatilityPenalty(rows),
	}

	c.Adjusted = c.Base * c.InteractionMultiplier * (volatilityFloor + (1-volatilityFloor)*c.VolatilityPenalty)
	c.Score = roundTo(squash(c.Adjusted), 1)

	return c
}

// InteractionMultiplier rewards or punishes agreement between the latest
// normalized Altman value and the raw F-score. Both comparisons are strict.
func InteractionMultiplier(latestZNorm float64, fScore int) float64 {
	switch {
	case latestZNorm < weakZNorm && fScore < weakFScoreBelow:
		return weakMultiplier
	case latestZNorm > strongZNorm && fScore > strongFScoreAbove:
		return strongMultiplier
	default:
		return 1.0
	}
}

// VolatilityPenalty is exp(-(CV revenue + CV net income + CV operating cash
// flow)) over all rows, or 1 when fewer than eight rows exist.
func VolatilityPenalty(rows []FeatureRow) float64 {
	if len(rows) < volatilityHistory {
		return 1.0
	}

	revenue := make([]float64, len(rows))
	income := make([]float64, len(rows))
	cash := make([]float64, len(rows))
	for i, r := range rows {
		revenue[i] = r.Revenue
		income[i] = r.NetIncome
		cash[i] = r.OperatingCashFlow
	}

	total := coefficientOfVariation(revenue, false) +
		coefficientOfVariation(income, true) +
		coefficientOfVariation(cash, true)

	return math.Exp(-total)
}

// squash maps the adjusted composite onto (0, 100); 50 maps to 50
func squash(x float64) float64 {
	return 100 / (1 + math.Exp(-logisticSlope*(x-logisticCenter)))
}
