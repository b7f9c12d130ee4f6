package distress

// Altman zone thresholds on the raw quarterly Z value
const (
	AltmanDistressBelow = 1.81
	AltmanSafeAbove     = 2.99
)

// Altman zone labels
const (
	ZoneDistress = "distress"
	ZoneGrey     = "grey"
	ZoneSafe     = "safe"
)

// altmanMaxContribution caps the Altman share of the base score
const altmanMaxContribution = 40.0

// recencyWeights are the per-window weights, oldest first. Each set sums to 1.
var recencyWeights = map[int][]float64{
	1: {1.0},
	2: {0.4, 0.6},
	3: {0.2, 0.3, 0.5},
	4: {0.1, 0.2, 0.3, 0.4},
}

// AltmanResult is the output of the Altman submodel
type AltmanResult struct {
	ZRaw         []float64 // raw values for the scored quarters, oldest first
	ZNorm        []float64 // sigmoid-normalized values, oldest first
	Weights      []float64
	Contribution float64 // in [0, 40]
}

// LatestNorm is the normalized value of the most recent quarter
func (a AltmanResult) LatestNorm() float64 {
	if len(a.ZNorm) == 0 {
		return sigmoid(0)
	}
	return a.ZNorm[len(a.ZNorm)-1]
}

// LatestRaw is the raw value of the most recent quarter
func (a AltmanResult) LatestRaw() float64 {
	if len(a.ZRaw) == 0 {
		return neutralZRaw
	}
	return a.ZRaw[len(a.ZRaw)-1]
}

// neutralZRaw is used for quarters whose total assets are unusable
const neutralZRaw = 1.0

// Altman computes the recency-weighted bankruptcy-risk contribution over
// the most recent four (or fewer) rows.
func Altman(rows []FeatureRow) AltmanResult {
	k := len(rows)
	if k > 4 {
		k = 4
	}
	if k == 0 {
		return AltmanResult{}
	}

	res := AltmanResult{
		ZRaw:    make([]float64, 0, k),
		ZNorm:   make([]float64, 0, k),
		Weights: RecencyWeights(k),
	}

	for _, r := range rows[len(rows)-k:] {
		z := AltmanZ(r)
		res.ZRaw = append(res.ZRaw, z)
		res.ZNorm = append(res.ZNorm, normalizeZ(z))
	}

	for i, w := range res.Weights {
		res.Contribution += w * res.ZNorm[i]
	}
	res.Contribution *= altmanMaxContribution

	return res
}

// RecencyWeights returns a copy of the weight vector for a k-quarter window
func RecencyWeights(k int) []float64 {
	w := recencyWeights[k]
	out := make([]float64, len(w))
	copy(out, w)
	return out
}

// AltmanZ is the raw quarterly Z value of one row
func AltmanZ(r FeatureRow) float64 {
	if r.TotalAssets == 0 {
		return neutralZRaw
	}
	ta := r.TotalAssets
	return 0.717*(r.WorkingCapital/ta) +
		0.847*(r.RetainedEarnings/ta) +
		3.107*(r.EBIT/ta) +
		0.420*(r.BookEquity/r.LiabilitiesBase()) +
		0.998*(r.Revenue/ta)
}

// normalizeZ maps a raw Z value to (0,1) centred on the 1.8 distress line
func normalizeZ(z float64) float64 {
	return sigmoid(0.5 * (z - 1.8))
}

// AltmanZone classifies a raw Z value into distress, grey or safe
func AltmanZone(z float64) string {
	switch {
	case z < AltmanDistressBelow:
		return ZoneDistress
	case z <= AltmanSafeAbove:
		return ZoneGrey
	default:
		return ZoneSafe
	}
}
