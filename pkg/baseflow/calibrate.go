package baseflow

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// nseEpsilon stabilizes the Nash-Sutcliffe efficiencies against degenerate
// (zero-variance) partitions so the grid search stays total.
const nseEpsilon = 1e-10

// Filter evaluates one candidate parameter, returning the baseflow series and
// the exceedance count. Closures over the concrete filters adapt them to this
// shape, e.g.
//
//	func(p float64) ([]float64, int, error) { return Boughton(Q, a, p, SeedQ0) }
type Filter func(p float64) ([]float64, int, error)

// Grid returns the candidates start, start+step, ... strictly below stop.
func Grid(start, stop, step float64) []float64 {
	if step <= 0 {
		return nil
	}
	var out []float64
	for i := 0; ; i++ {
		v := start + float64(i)*step
		if v >= stop {
			break
		}
		out = append(out, v)
	}
	return out
}

// Calibrate grid-searches the filter's free parameter, minimizing a composite
// loss built from two log-space Nash-Sutcliffe efficiencies, one over the
// recession partition of Q and one over its complement, multiplied by an
// exceedance penalty:
//
//	loss(p) = 1 - (1 - (1-NSE_rec)/(1-NSE_oth)) * (1 - exceed/n)
//
// Candidates are evaluated concurrently, each writing a disjoint loss slot.
// Ties resolve to the earliest grid entry. Cancelling ctx aborts the search.
func Calibrate(ctx context.Context, grid []float64, filter Filter, Q []float64) (float64, error) {
	if len(grid) == 0 {
		return 0, fmt.Errorf("%w: empty parameter grid", ErrInvalidParameter)
	}

	inRec := make([]bool, len(Q))
	for _, i := range RecessionPeriods(Q) {
		inRec[i] = true
	}
	logQ := log1pSeries(Q)

	loss := make([]float64, len(grid))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range grid {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, exceed, err := filter(grid[i])
			if err != nil {
				return fmt.Errorf("candidate %g: %w", grid[i], err)
			}
			loss[i] = candidateLoss(logQ, log1pSeries(b), inRec, float64(exceed)/float64(len(Q)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	best := 0
	for i := 1; i < len(loss); i++ {
		if loss[i] < loss[best] {
			best = i
		}
	}
	return grid[best], nil
}

func candidateLoss(logQ, logB []float64, inRec []bool, fExceed float64) float64 {
	nseRec := logSpaceNSE(logQ, logB, inRec, true)
	nseOth := logSpaceNSE(logQ, logB, inRec, false)
	return 1 - (1-(1-nseRec)/(1-nseOth))*(1-fExceed)
}

// logSpaceNSE computes the Nash-Sutcliffe efficiency of logB against logQ
// over the selected partition, epsilon-stabilized and strictly below 1.
func logSpaceNSE(logQ, logB []float64, inRec []bool, want bool) float64 {
	var sum float64
	var count int
	for i, v := range logQ {
		if inRec[i] == want {
			sum += v
			count++
		}
	}
	mean := 0.0
	if count > 0 {
		mean = sum / float64(count)
	}

	var ssRes, ssTot float64
	for i, v := range logQ {
		if inRec[i] != want {
			continue
		}
		ssRes += (v - logB[i]) * (v - logB[i])
		ssTot += (v - mean) * (v - mean)
	}
	return (1 - ssRes/(ssTot+nseEpsilon)) - nseEpsilon
}

func log1pSeries(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Log1p(v)
	}
	return out
}
