package baseflow

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// recessionQuantile selects the characteristic decay constant near the
// steepest-decline tail of the strict-baseflow samples. A tail quantile is
// used instead of the mean to guard against residual non-recession points
// surviving the classifier.
const recessionQuantile = 0.05

// RecessionCoefficient estimates the exponential recession coefficient a in
// (0,1) from the flow series restricted to the strict-baseflow mask. For each
// strict sample the local decay constant K = -Q/dQ is computed from the
// centered first difference; the coefficient is exp(-1/K) at the 5th
// percentile of K.
func RecessionCoefficient(Q []float64, strict []bool) (float64, error) {
	if len(strict) != len(Q) {
		return 0, fmt.Errorf("%w: mask length %d does not match series length %d",
			ErrInsufficientData, len(strict), len(Q))
	}

	var K []float64
	for i := 1; i < len(Q)-1; i++ {
		if !strict[i] {
			continue
		}
		dQ := (Q[i+1] - Q[i-1]) / 2
		if dQ >= 0 || Q[i] <= 0 {
			continue
		}
		K = append(K, -Q[i]/dQ)
	}
	if len(K) == 0 {
		return 0, fmt.Errorf("%w: no strict recession samples", ErrInsufficientData)
	}

	sort.Float64s(K)
	k := stat.Quantile(recessionQuantile, stat.LinInterp, K, nil)
	if k <= 0 {
		return 0, fmt.Errorf("%w: non-positive decay constant %g", ErrInsufficientData, k)
	}
	return math.Exp(-1 / k), nil
}
