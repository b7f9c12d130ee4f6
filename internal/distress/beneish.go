package distress

import (
	"distresscli/pkg/contracts/domain"
)

const (
	// defaultMScore is the low-risk prior used when indices cannot be computed
	defaultMScore = -5.0
	// beneishMaxContribution scales the earnings-quality share of the base score
	beneishMaxContribution = 25.0
	// ManipulationThreshold separates low from high manipulation risk on raw M
	ManipulationThreshold = -1.78
)

// Manipulation risk labels
const (
	RiskLow  = "low"
	RiskHigh = "high"
)

// BeneishResult is the output of the Beneish submodel
type BeneishResult struct {
	Computed         bool
	Indices          domain.BeneishIndices
	MScore           float64
	ManipulationProb float64
	Quality          float64
	Contribution     float64 // in [0, 25]
}

// Risk labels the raw M-score against the manipulation threshold
func (b BeneishResult) Risk() string {
	if b.MScore > ManipulationThreshold {
		return RiskHigh
	}
	return RiskLow
}

// Beneish estimates earnings-manipulation risk from year-over-year indices.
// The indices need at least five rows of history and a non-zero year-ago
// revenue; otherwise the raw score falls back to -5.
func Beneish(rows []FeatureRow) BeneishResult {
	res := BeneishResult{MScore: defaultMScore}

	prior, ok := yearAgo(rows)
	if ok && len(rows) >= minGrowthHistory && prior.Revenue != 0 {
		latest := rows[len(rows)-1]
		res.Computed = true
		res.Indices = beneishIndices(latest, prior)
		res.MScore = mScore(res.Indices)
	}

	res.ManipulationProb = sigmoid(res.MScore)
	res.Quality = 1 - res.ManipulationProb
	res.Contribution = res.Quality * beneishMaxContribution

	return res
}

// beneishIndices computes the eight indices; prior.Revenue must be non-zero.
// Every index resolves to 1 when its denominator is zero.
func beneishIndices(cur, prior FeatureRow) domain.BeneishIndices {
	growth := cur.Revenue / prior.Revenue

	idx := domain.BeneishIndices{
		DSRI: growth,
		GMI:  1,
		SGI:  growth,
		DEPI: 1,
		SGAI: 1,
	}

	if prior.OperatingIncome != 0 {
		idx.GMI = ratioOr(operatingMargin(prior), operatingMargin(cur), 1)
	}

	idx.AQI = ratioOr(nonCurrentShare(cur), nonCurrentShare(prior), 1)

	if cur.Revenue != 0 {
		idx.DEPI = ratioOr(1-operatingMargin(prior), 1-operatingMargin(cur), 1)
		idx.SGAI = ratioOr(overheadShare(cur), overheadShare(prior), 1)
	}

	idx.LVGI = ratioOr(leverage(cur), leverage(prior), 1)
	idx.TATA = (cur.NetIncome - cur.OperatingCashFlow) / cur.AssetsBase()

	return idx
}

// mScore combines the indices with the eight-variable Beneish coefficients
func mScore(i domain.BeneishIndices) float64 {
	return -4.84 +
		0.920*i.DSRI +
		0.528*i.GMI +
		0.404*i.AQI +
		0.892*i.SGI +
		0.115*i.DEPI -
		0.172*i.SGAI +
		4.679*i.TATA -
		0.327*i.LVGI
}

// nonCurrentShare is the non-current fraction of reported total assets
func nonCurrentShare(r FeatureRow) float64 {
	if r.TotalAssets == 0 {
		return 0
	}
	return (r.TotalAssets - r.CurrentAssets) / r.TotalAssets
}

// overheadShare is the share of revenue not converted to operating income
func overheadShare(r FeatureRow) float64 {
	return ratioOr(r.Revenue-r.OperatingIncome, r.Revenue, 0)
}
