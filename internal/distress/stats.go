package distress

import (
	"math"
)

// sigmoid is the logistic function 1/(1+e^-x)
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// clamp bounds v to [lo, hi]
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ratioOr divides num by den, returning fallback when den is zero
func ratioOr(num, den, fallback float64) float64 {
	if den == 0 {
		return fallback
	}
	return num / den
}

// calculateMean returns the arithmetic mean, 0 for no values
func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationStdDev is the standard deviation with divisor n
func populationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := calculateMean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// coefficientOfVariation is std/mean, or std/|mean| when absMean is set.
// A zero mean yields 0.
func coefficientOfVariation(values []float64, absMean bool) float64 {
	mean := calculateMean(values)
	if mean == 0 {
		return 0
	}
	if absMean {
		mean = math.Abs(mean)
	}
	return populationStdDev(values) / mean
}

// roundTo rounds v to the given number of decimals
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
