// Package stats converts CLs p-values into Gaussian significances.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Saturation values returned by Sigma when p is too close to 0 or 1 to be
// resolved in float64.
const (
	MaxSigma     = 7.4
	MinSigma     = -7.4
	InvalidSigma = -1.0

	pvalueEpsilon = 1e-16
)

// DefaultExclusionPValue is the one-sided p-value for a 95% CL exclusion.
const DefaultExclusionPValue = 0.05

// Sigma returns the one-sided significance nsigma = Φ⁻¹(1-p) for the
// p-value p. Values within 1e-16 of 1 or 0 saturate at MinSigma and
// MaxSigma. NaN yields InvalidSigma.
func Sigma(p float64) float64 {
	if math.IsNaN(p) {
		return InvalidSigma
	}
	if p >= 1.0-pvalueEpsilon {
		return MinSigma
	}
	if p <= pvalueEpsilon {
		return MaxSigma
	}
	// Φ⁻¹(1-p) == -Φ⁻¹(p); the lower tail avoids cancellation in 1-p.
	z := -distuv.UnitNormal.Quantile(p)
	if z == 0 {
		// Negating Quantile(0.5) gives -0, which formats as "-0".
		return 0
	}
	return z
}

// AsymptoticSigma approximates Φ⁻¹(1-p) for tiny p by sqrt(u - ln u) with
// u = -2 ln(p √(2π)). Good to a few percent above ~1.5σ. Returns
// InvalidSigma for p <= 0.
func AsymptoticSigma(p float64) float64 {
	if !(p > 0) {
		return InvalidSigma
	}
	u := -2.0 * math.Log(p*math.Sqrt(2.0*math.Pi))
	return math.Sqrt(u - math.Log(u))
}

// ExclusionLevel is the significance threshold Φ⁻¹(1-pvalue) that a mass
// point must reach to be excluded at the given p-value. For the default
// 0.05 it is ≈1.645.
func ExclusionLevel(pvalue float64) float64 {
	return distuv.UnitNormal.Quantile(1.0 - pvalue)
}
