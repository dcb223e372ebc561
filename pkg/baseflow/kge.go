package baseflow

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// kgeEpsilon guards the KGE component denominators against zero-variance or
// zero-volume evaluation series.
const kgeEpsilon = 1e-10

// KGE returns the Kling-Gupta Efficiency of sim against obs
// (Gupta et al., 2009): 1 - sqrt((r-1)² + (α-1)² + (β-1)²) with r the
// Pearson correlation, α the ratio of standard deviations, and β the ratio
// of means. Both series must have the same length; NaN is returned for
// empty input.
func KGE(sim, obs []float64) float64 {
	n := len(sim)
	if n == 0 || len(obs) != n {
		return math.NaN()
	}

	simMean := stat.Mean(sim, nil)
	obsMean := stat.Mean(obs, nil)

	var rNum, simSS, obsSS, simSum, obsSum float64
	for i := 0; i < n; i++ {
		ds := sim[i] - simMean
		do := obs[i] - obsMean
		rNum += ds * do
		simSS += ds * ds
		obsSS += do * do
		simSum += sim[i]
		obsSum += obs[i]
	}

	r := rNum / (math.Sqrt(simSS*obsSS) + kgeEpsilon)
	alpha := math.Sqrt(simSS/float64(n)) / (math.Sqrt(obsSS/float64(n)) + kgeEpsilon)
	beta := simSum / (obsSum + kgeEpsilon)

	return 1 - math.Sqrt((r-1)*(r-1)+(alpha-1)*(alpha-1)+(beta-1)*(beta-1))
}
