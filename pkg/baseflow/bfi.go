package baseflow

import (
	"fmt"
	"math"
)

// maxAnnualBFI is the physically plausible ceiling for a single-year baseflow
// index; above it MaxBFI falls back to the whole-series ratio.
const maxAnnualBFI = 0.9

// samplesPerYear is the block size used when no year labels are supplied.
const samplesPerYear = 365

// Backward reconstructs a baseflow series by running the recession backwards
// from the series tail: b[i-1] = b[i]/a, clipped to Q[i-1], seeded from the
// final LH baseline sample.
func Backward(Q, bLH []float64, a float64) ([]float64, error) {
	if a <= 0 || a >= 1 {
		return nil, fmt.Errorf("%w: recession coefficient must lie in (0,1), got %g",
			ErrInvalidParameter, a)
	}
	if len(Q) == 0 || len(bLH) != len(Q) {
		return nil, fmt.Errorf("%w: need matching non-empty series", ErrInsufficientData)
	}

	n := len(Q)
	b := make([]float64, n)
	b[n-1] = math.Min(bLH[n-1], Q[n-1])
	for i := n - 1; i > 0; i-- {
		b[i-1] = b[i] / a
		if b[i-1] > Q[i-1] {
			b[i-1] = Q[i-1]
		}
	}
	return b, nil
}

// MaxBFI estimates the maximum annual baseflow index from the backward
// recursion of Q. years optionally labels each sample with its calendar
// year; when nil, fixed 365-sample blocks are used. A maximum above 0.9 is
// treated as implausible and replaced by the whole-series ratio.
func MaxBFI(Q, bLH []float64, a float64, years []int) (float64, error) {
	if years != nil && len(years) != len(Q) {
		return 0, fmt.Errorf("%w: year labels length %d does not match series length %d",
			ErrInsufficientData, len(years), len(Q))
	}
	b, err := Backward(Q, bLH, a)
	if err != nil {
		return 0, err
	}

	label := func(i int) int { return i / samplesPerYear }
	if years != nil {
		label = func(i int) int { return years[i] }
	}

	sumB := make(map[int]float64)
	sumQ := make(map[int]float64)
	var totalB, totalQ float64
	for i := range Q {
		y := label(i)
		sumB[y] += b[i]
		sumQ[y] += Q[i]
		totalB += b[i]
		totalQ += Q[i]
	}
	if totalQ == 0 {
		return 0, fmt.Errorf("%w: zero total flow", ErrInsufficientData)
	}

	max := math.Inf(-1)
	for y, q := range sumQ {
		if q == 0 {
			continue
		}
		if bfi := sumB[y] / q; bfi > max {
			max = bfi
		}
	}
	if math.IsInf(max, -1) {
		return 0, fmt.Errorf("%w: no year with non-zero flow", ErrInsufficientData)
	}
	if max > maxAnnualBFI {
		return totalB / totalQ, nil
	}
	return max, nil
}
