package baseflow

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// HysepInterval returns the hydrograph separation interval from the basin
// area in km², following the HYSEP empirical rule (Sloto & Crouse, 1996):
// 2N with N = (0.3861022*area)^0.2, rounded down to the nearest odd integer
// and limited to [3,11]. Pass area <= 0 or NaN when the area is unknown.
func HysepInterval(areaKm2 float64) int {
	N := 5.0
	if areaKm2 > 0 && !math.IsNaN(areaKm2) {
		N = math.Pow(0.3861022*areaKm2, 0.2)
	}
	inN := math.Ceil(2 * N)
	if math.Mod(inN, 2) == 0 {
		inN--
	}
	return int(math.Min(math.Max(inN, 3), 11))
}

// Fixed applies the fixed-interval graphical method from the HYSEP program:
// each interval of the series is replaced by its minimum.
func Fixed(Q []float64, areaKm2 float64) []float64 {
	if len(Q) == 0 {
		return nil
	}
	inN := HysepInterval(areaKm2)
	b := make([]float64, len(Q))
	blocks := len(Q) / inN
	for i := 0; i < blocks; i++ {
		min := floats.Min(Q[inN*i : inN*(i+1)])
		for j := inN * i; j < inN*(i+1); j++ {
			b[j] = min
		}
	}
	if blocks*inN != len(Q) {
		min := floats.Min(Q[blocks*inN:])
		for j := blocks * inN; j < len(Q); j++ {
			b[j] = min
		}
	}
	return b
}

// Slide applies the sliding-interval graphical method from the HYSEP program:
// each sample is replaced by the minimum of the window centered on it, with
// the head and tail filled from their partial windows.
func Slide(Q []float64, areaKm2 float64) []float64 {
	if len(Q) == 0 {
		return nil
	}
	inN := HysepInterval(areaKm2)
	half := (inN - 1) / 2
	b := make([]float64, len(Q))
	if len(Q) <= 2*half {
		min := floats.Min(Q)
		for i := range b {
			b[i] = min
		}
		return b
	}
	for i := half; i < len(Q)-half; i++ {
		b[i] = floats.Min(Q[i-half : i+half+1])
	}
	headMin := floats.Min(Q[:half])
	for i := 0; i < half; i++ {
		b[i] = headMin
	}
	tailMin := floats.Min(Q[len(Q)-half:])
	for i := len(Q) - half; i < len(Q); i++ {
		b[i] = tailMin
	}
	return b
}

// Local applies the local-minimum graphical method from the HYSEP program:
// samples that are the minimum of their centered window become turning
// points, and baseflow is interpolated linearly between them. Outside the
// span of the first and last turning points the LH baseline is used.
func Local(Q, bLH []float64, areaKm2 float64) ([]float64, int, error) {
	if len(bLH) != len(Q) {
		return nil, 0, fmt.Errorf("%w: LH baseline length %d does not match series length %d",
			ErrInsufficientData, len(bLH), len(Q))
	}
	inN := HysepInterval(areaKm2)
	half := (inN - 1) / 2
	var turns []int
	for i := half; i+half < len(Q); i++ {
		if Q[i] == floats.Min(Q[i-half:i+half+1]) {
			turns = append(turns, i)
		}
	}
	return interpolateTurns(Q, bLH, turns)
}

// UKIH applies the smoothed-minima method of the UK Institute of Hydrology
// (1980): block minima over 5-sample blocks become turning points when
// scaled below both neighboring block minima.
func UKIH(Q, bLH []float64) ([]float64, int, error) {
	if len(bLH) != len(Q) {
		return nil, 0, fmt.Errorf("%w: LH baseline length %d does not match series length %d",
			ErrInsufficientData, len(bLH), len(Q))
	}
	const N = 5
	blockEnd := len(Q) / N * N
	var idxMin []int
	for beg := 0; beg < blockEnd; beg += N {
		min := beg
		for j := beg + 1; j < beg+N; j++ {
			if Q[j] < Q[min] {
				min = j
			}
		}
		idxMin = append(idxMin, min)
	}

	var turns []int
	for i := 0; i+2 < len(idxMin); i++ {
		if 0.9*Q[idxMin[i+1]] < Q[idxMin[i]] && 0.9*Q[idxMin[i+1]] < Q[idxMin[i+2]] {
			turns = append(turns, idxMin[i+1])
		}
	}
	return interpolateTurns(Q, bLH, turns)
}

// interpolateTurns linearly interpolates baseflow between turning points,
// clipping to Q, and falls back to the LH baseline outside the turning span.
func interpolateTurns(Q, bLH []float64, turns []int) ([]float64, int, error) {
	if len(turns) < 3 {
		return nil, 0, fmt.Errorf("%w: got %d", ErrInsufficientTurningPoints, len(turns))
	}

	b := make([]float64, len(Q))
	exceed := 0
	seg := 0
	for i := turns[0]; i <= turns[len(turns)-1]; i++ {
		if i == turns[seg+1] {
			seg++
			b[i] = Q[i]
		} else {
			lo, hi := turns[seg], turns[seg+1]
			b[i] = Q[lo] + (Q[hi]-Q[lo])/float64(hi-lo)*float64(i-lo)
		}
		if b[i] > Q[i] {
			b[i] = Q[i]
			exceed++
		}
	}

	copy(b[:turns[0]], bLH[:turns[0]])
	copy(b[turns[len(turns)-1]+1:], bLH[turns[len(turns)-1]+1:])
	return b, exceed, nil
}
