package baseflow

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DefaultPeakQuantile is the flow quantile above which a local peak counts as
// a major event for the strict-baseflow classifier.
const DefaultPeakQuantile = 0.9

// Minimum declining-run length kept by RecessionPeriods, and the leading
// fraction of each run discarded as impure recession.
const (
	minRecessionRun  = 10
	recessionTrimPct = 0.6
)

// RecessionPeriods identifies sustained declining segments of Q and returns
// the flat set of their indices. A 3-point centered moving average marks
// declining steps; maximal runs shorter than 10 steps are dropped and the
// leading 60% of each kept run is trimmed.
func RecessionPeriods(Q []float64) []int {
	n := len(Q)
	if n < 5 {
		return nil
	}

	ave := movingAverage(Q, 3)
	dec := make([]int, n-1)
	for i := 1; i <= n-3; i++ {
		if ave[i-1] > ave[i] {
			dec[i] = 1
		}
	}

	var idx []int
	beg := -1
	for i := 0; i < len(dec)-1; i++ {
		if dec[i]-dec[i+1] == -1 {
			beg = i + 1
		}
		if dec[i]-dec[i+1] == 1 && beg >= 0 {
			end := i + 1
			if run := end - beg; run >= minRecessionRun {
				start := beg + int(math.Ceil(float64(run)*recessionTrimPct))
				for j := start; j < end; j++ {
					idx = append(idx, j)
				}
			}
			beg = -1
		}
	}
	return idx
}

// StrictBaseflow classifies the samples of Q that are judged free of
// quickflow influence. Four independent exclusion rules are applied and
// their union removed: rising or flat limbs, buffer zones of 2 samples
// before and 3 after each rise, 5-sample tails after major-event peaks
// (at or above peakQuantile, default DefaultPeakQuantile when <= 0), and
// steepening declines. Indices covered by a non-nil ice mask are excluded
// unconditionally.
func StrictBaseflow(Q []float64, ice []bool, peakQuantile float64) []bool {
	n := len(Q)
	strict := make([]bool, n)
	if n < 5 {
		return strict
	}
	if peakQuantile <= 0 {
		peakQuantile = DefaultPeakQuantile
	}

	dQ := make([]float64, n)
	for i := 1; i < n-1; i++ {
		dQ[i] = (Q[i+1] - Q[i-1]) / 2
	}

	excl := make([]bool, n)
	excl[0], excl[n-1] = true, true

	// rising or flat limbs, with a buffer of 2 samples before and 3 after
	for i := 1; i < n-1; i++ {
		if dQ[i] < 0 {
			continue
		}
		for j := i - 2; j <= i+3; j++ {
			if j >= 0 && j < n {
				excl[j] = true
			}
		}
	}

	// recession tails of major events
	threshold := quantile(Q, peakQuantile)
	for p := 1; p < n-1; p++ {
		if Q[p] >= threshold && Q[p] >= Q[p-1] && Q[p] >= Q[p+1] {
			for j := p + 1; j <= p+5 && j < n; j++ {
				excl[j] = true
			}
		}
	}

	// declines that steepen on the next step are still quickflow-driven
	for i := 1; i < n-2; i++ {
		if -dQ[i+1] > -dQ[i] {
			excl[i] = true
		}
	}

	for i := range strict {
		strict[i] = !excl[i]
		if ice != nil && i < len(ice) && ice[i] {
			strict[i] = false
		}
	}
	return strict
}

// Masked returns the elements of x selected by mask.
func Masked(x []float64, mask []bool) []float64 {
	out := make([]float64, 0, len(x))
	for i, v := range x {
		if mask[i] {
			out = append(out, v)
		}
	}
	return out
}

// movingAverage returns the centered moving average of x with the given
// window; the result is len(x)-window+1 samples long.
func movingAverage(x []float64, window int) []float64 {
	out := make([]float64, len(x)-window+1)
	sum := 0.0
	for i := 0; i < window; i++ {
		sum += x[i]
	}
	out[0] = sum / float64(window)
	for i := 1; i < len(out); i++ {
		sum += x[i+window-1] - x[i-1]
		out[i] = sum / float64(window)
	}
	return out
}

func quantile(x []float64, p float64) float64 {
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}
