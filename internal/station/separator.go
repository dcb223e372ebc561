package station

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hydrographs/baseflow/pkg/baseflow"
)

// minSeriesLength is the shortest series the pipeline accepts; the
// classifiers and interval methods look 2-3 samples ahead and behind.
const minSeriesLength = 5

// Calibration grids for the parameterized filters.
var (
	gridBoughton = baseflow.Grid(0.0001, 0.1, 0.0001)
	gridFurey    = baseflow.Grid(0.01, 10, 0.01)
	gridEckhardt = baseflow.Grid(0.001, 1, 0.001)
	gridEWMA     = baseflow.Grid(0.0001, 0.1, 0.0001)
	gridWillems  = baseflow.Grid(0.001, 1, 0.001)
)

// Separator runs the baseflow separation pipeline for one station at a time.
type Separator struct {
	logger       *zap.SugaredLogger
	methods      []Method
	peakQuantile float64
	computeKGE   bool
}

// NewSeparator creates a Separator for the given methods. A nil or empty
// method list means all methods.
func NewSeparator(logger *zap.SugaredLogger, methods []Method) *Separator {
	if len(methods) == 0 {
		methods = AllMethods()
	}
	return &Separator{
		logger:       logger,
		methods:      methods,
		peakQuantile: baseflow.DefaultPeakQuantile,
		computeKGE:   true,
	}
}

// Result holds the per-method outputs of one station's separation.
type Result struct {
	// Baseflow maps each completed method to its baseflow series.
	Baseflow map[Method][]float64
	// Parameters maps calibrated methods to their fitted parameter.
	Parameters map[Method]float64
	// KGE maps each completed method to its Kling-Gupta Efficiency against
	// the flow series on the strict-baseflow mask.
	KGE map[Method]float64
	// BFI maps each completed method to its whole-series baseflow index.
	BFI map[Method]float64
	// RecessionA is the fitted recession coefficient, 0 when no method
	// needed it or its estimation failed.
	RecessionA float64
	// Strict is the strict-baseflow mask used for scoring.
	Strict []bool
	// Skipped maps failed methods to the reason they were skipped.
	Skipped map[Method]error
}

// Run separates Q with every configured method. Per-method failures are
// recorded in Result.Skipped and do not abort the remaining methods. The ice
// mask may be nil; area <= 0 means unknown.
func (s *Separator) Run(ctx context.Context, Q []float64, areaKm2 float64, ice []bool) (*Result, error) {
	if len(Q) < minSeriesLength {
		return nil, fmt.Errorf("series has %d samples, need at least %d", len(Q), minSeriesLength)
	}
	for i, v := range Q {
		if v < 0 {
			return nil, fmt.Errorf("negative flow %v at sample %d", v, i)
		}
	}
	start := time.Now()

	res := &Result{
		Baseflow:   make(map[Method][]float64),
		Parameters: make(map[Method]float64),
		KGE:        make(map[Method]float64),
		BFI:        make(map[Method]float64),
		Skipped:    make(map[Method]error),
	}
	res.Strict = baseflow.StrictBaseflow(Q, ice, s.peakQuantile)

	var recessionErr error
	for _, m := range s.methods {
		if !needsRecession(m) {
			continue
		}
		res.RecessionA, recessionErr = baseflow.RecessionCoefficient(Q, res.Strict)
		if recessionErr != nil {
			s.logger.Warnf("recession coefficient estimation failed: %v", recessionErr)
		}
		break
	}

	bLH, _, err := baseflow.LH(Q, baseflow.DefaultBeta, baseflow.SeedQ0)
	if err != nil {
		return nil, fmt.Errorf("LH baseline: %w", err)
	}

	for _, m := range s.methods {
		if needsRecession(m) && recessionErr != nil {
			res.Skipped[m] = fmt.Errorf("no recession coefficient: %w", recessionErr)
			continue
		}
		b, param, err := s.runMethod(ctx, m, Q, bLH, res.RecessionA, areaKm2)
		if err != nil {
			s.logger.Warnf("method %s skipped: %v", m, err)
			res.Skipped[m] = err
			continue
		}
		res.Baseflow[m] = b
		if param != 0 {
			res.Parameters[m] = param
		}
		res.BFI[m] = seriesRatio(b, Q)
		if s.computeKGE {
			res.KGE[m] = baseflow.KGE(baseflow.Masked(b, res.Strict), baseflow.Masked(Q, res.Strict))
		}
	}

	s.logger.Debugf("separated %d samples with %d/%d methods in %s",
		len(Q), len(res.Baseflow), len(s.methods), time.Since(start).Round(time.Millisecond))
	return res, nil
}

// runMethod dispatches one method, calibrating its free parameter when it
// has one. The returned parameter is 0 for parameter-free methods.
func (s *Separator) runMethod(ctx context.Context, m Method, Q, bLH []float64, a, areaKm2 float64) ([]float64, float64, error) {
	switch m {
	case MethodUKIH:
		b, _, err := baseflow.UKIH(Q, bLH)
		return b, 0, err
	case MethodLocal:
		b, _, err := baseflow.Local(Q, bLH, areaKm2)
		return b, 0, err
	case MethodFixed:
		return baseflow.Fixed(Q, areaKm2), 0, nil
	case MethodSlide:
		return baseflow.Slide(Q, areaKm2), 0, nil
	case MethodLH:
		return append([]float64(nil), bLH...), baseflow.DefaultBeta, nil
	case MethodChapman:
		b, _, err := baseflow.Chapman(Q, a, baseflow.SeedQ0)
		return b, 0, err
	case MethodCM:
		b, _, err := baseflow.ChapmanMaxwell(Q, a, baseflow.SeedQ0)
		return b, 0, err
	case MethodBoughton:
		return s.calibrated(ctx, gridBoughton, Q, func(p float64) ([]float64, int, error) {
			return baseflow.Boughton(Q, a, p, baseflow.SeedQ0)
		})
	case MethodFurey:
		return s.calibrated(ctx, gridFurey, Q, func(p float64) ([]float64, int, error) {
			return baseflow.Furey(Q, a, p, baseflow.SeedQ0)
		})
	case MethodEckhardt:
		return s.calibrated(ctx, gridEckhardt, Q, func(p float64) ([]float64, int, error) {
			return baseflow.Eckhardt(Q, a, p, baseflow.SeedQ0)
		})
	case MethodEWMA:
		return s.calibrated(ctx, gridEWMA, Q, func(p float64) ([]float64, int, error) {
			return baseflow.EWMA(Q, p, baseflow.SeedQ0)
		})
	case MethodWillems:
		return s.calibrated(ctx, gridWillems, Q, func(p float64) ([]float64, int, error) {
			return baseflow.Willems(Q, a, p, baseflow.SeedQ0)
		})
	}
	return nil, 0, fmt.Errorf("unknown method %q", m)
}

func (s *Separator) calibrated(ctx context.Context, grid []float64, Q []float64, filter baseflow.Filter) ([]float64, float64, error) {
	p, err := baseflow.Calibrate(ctx, grid, filter, Q)
	if err != nil {
		return nil, 0, fmt.Errorf("calibration: %w", err)
	}
	b, _, err := filter(p)
	if err != nil {
		return nil, 0, err
	}
	return b, p, nil
}

func seriesRatio(b, Q []float64) float64 {
	var sumB, sumQ float64
	for i := range Q {
		sumB += b[i]
		sumQ += Q[i]
	}
	if sumQ == 0 {
		return 0
	}
	return sumB / sumQ
}
