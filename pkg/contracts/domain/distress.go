package domain

import (
	"time"
)

// ScoreStatus tells whether a report was computed or fell back to neutral
type ScoreStatus string

const (
	ScoreStatusScored       ScoreStatus = "scored"
	ScoreStatusInsufficient ScoreStatus = "insufficient"
)

// NeutralDistressScore is reported when no usable quarters exist
const NeutralDistressScore = 50.0

// DistressReport is the external result of one scoring run
type DistressReport struct {
	Ticker         string       `json:"ticker"`
	AssessmentDate time.Time    `json:"assessment_date"`
	DistressScore  float64      `json:"distress_score" validate:"min=0,max=100"`
	Status         ScoreStatus  `json:"status"`
	Reason         string       `json:"reason,omitempty"`
	Diagnostics    *Diagnostics `json:"diagnostics,omitempty"`
}

// Diagnostics exposes the intermediate values behind a distress score
type Diagnostics struct {
	ZContribution         float64   `json:"z_contribution"`
	FContribution         float64   `json:"f_contribution"`
	MContribution         float64   `json:"m_contribution"`
	InteractionMultiplier float64   `json:"interaction_multiplier"`
	VolatilityPenalty     float64   `json:"volatility_penalty"`
	BaseScore             float64   `json:"base_score"`
	AdjustedScore         float64   `json:"adjusted_score"`
	FScore                int       `json:"f_score"`
	Momentum              float64   `json:"momentum"`
	MScore                float64   `json:"m_score"`
	ManipulationProb      float64   `json:"manipulation_probability"`
	LatestZRaw            float64   `json:"latest_z_raw"`
	LatestZNorm           float64   `json:"latest_z_norm"`
	ZNormalized           []float64 `json:"z_normalized"`
	QuartersUsed          int       `json:"quarters_used"`
	AltmanZone            string    `json:"altman_zone"`
	ManipulationRisk      string    `json:"manipulation_risk"`

	Beneish *BeneishIndices `json:"beneish,omitempty"`
}

// BeneishIndices holds the eight year-over-year manipulation indices
type BeneishIndices struct {
	DSRI float64 `json:"dsri"` // Revenue growth proxy for receivables index
	GMI  float64 `json:"gmi"`  // Operating margin index
	AQI  float64 `json:"aqi"`  // Asset quality index
	SGI  float64 `json:"sgi"`  // Sales growth index
	DEPI float64 `json:"depi"` // Depreciation proxy index
	SGAI float64 `json:"sgai"` // Overhead proxy index
	LVGI float64 `json:"lvgi"` // Leverage index
	TATA float64 `json:"tata"` // Total accruals to total assets
}
