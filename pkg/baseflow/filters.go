package baseflow

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// DefaultBeta is the LH filter parameter recommended by Nathan & McMahon (1990).
const DefaultBeta = 0.925

// InitMethod selects how the first sample of a recursive filter is seeded.
type InitMethod string

const (
	InitQ0      InitMethod = "Q0"      // seed with the first flow sample
	InitMin     InitMethod = "min"     // seed with the series minimum
	InitLH      InitMethod = "LH"      // seed with the first sample of the LH filter
	InitLiteral InitMethod = "literal" // seed with a caller-supplied value
)

// InitialValue pairs an InitMethod with the literal used by InitLiteral.
type InitialValue struct {
	Method  InitMethod
	Literal float64
}

var (
	SeedQ0  = InitialValue{Method: InitQ0}
	SeedMin = InitialValue{Method: InitMin}
	SeedLH  = InitialValue{Method: InitLH}
)

// SeedLiteral returns an InitialValue that seeds the recursion with v.
func SeedLiteral(v float64) InitialValue {
	return InitialValue{Method: InitLiteral, Literal: v}
}

func (iv InitialValue) seed(Q []float64) (float64, error) {
	switch iv.Method {
	case InitQ0:
		return Q[0], nil
	case InitMin:
		return floats.Min(Q), nil
	case InitLH:
		b, _, err := LH(Q, DefaultBeta, SeedQ0)
		if err != nil {
			return 0, err
		}
		return b[0], nil
	case InitLiteral:
		return iv.Literal, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidInitialValue, string(iv.Method))
	}
}

// recursionCoeffs defines the affine step shared by all recursive filters:
// b[i+1] = prev*b[i] + flowPrev*Q[i] + flowNext*Q[i+1], clipped to Q[i+1].
type recursionCoeffs struct {
	prev     float64
	flowPrev float64
	flowNext float64
}

func runRecursive(Q []float64, c recursionCoeffs, init InitialValue) ([]float64, int, error) {
	if len(Q) < 2 {
		return nil, 0, fmt.Errorf("%w: recursive filters need at least 2 samples, got %d",
			ErrInsufficientData, len(Q))
	}
	seed, err := init.seed(Q)
	if err != nil {
		return nil, 0, err
	}

	b := make([]float64, len(Q))
	b[0] = seed
	exceed := 0
	for i := 0; i < len(Q)-1; i++ {
		b[i+1] = c.prev*b[i] + c.flowPrev*Q[i] + c.flowNext*Q[i+1]
		if b[i+1] > Q[i+1] {
			b[i+1] = Q[i+1]
			exceed++
		}
	}
	return b, exceed, nil
}

// LH applies the two-pass Lyne-Hollick digital filter (Lyne & Hollick, 1979):
// a forward pass followed by a backward smoothing pass clipped against the
// forward output. The returned count covers both passes.
func LH(Q []float64, beta float64, init InitialValue) ([]float64, int, error) {
	c := recursionCoeffs{prev: beta, flowPrev: (1 - beta) / 2, flowNext: (1 - beta) / 2}
	b, exceed, err := runRecursive(Q, c, init)
	if err != nil {
		return nil, 0, err
	}

	forward := append([]float64(nil), b...)
	for i := len(Q) - 2; i >= 0; i-- {
		b[i] = beta*b[i+1] + (1-beta)/2*(forward[i+1]+forward[i])
		if b[i] > forward[i] {
			b[i] = forward[i]
			exceed++
		}
	}
	return b, exceed, nil
}

// LHMulti applies the LH recursion for the given number of passes, alternating
// direction each pass (Spongberg, 2000). Each pass consumes the previous
// pass's output as its input; an even total pass count leaves the result in
// the original orientation.
func LHMulti(Q []float64, beta float64, passes int, init InitialValue) ([]float64, int, error) {
	if passes < 1 {
		return nil, 0, fmt.Errorf("%w: pass count must be >= 1, got %d", ErrInvalidParameter, passes)
	}
	if len(Q) < 2 {
		return nil, 0, fmt.Errorf("%w: recursive filters need at least 2 samples, got %d",
			ErrInsufficientData, len(Q))
	}
	seed, err := init.seed(Q)
	if err != nil {
		return nil, 0, err
	}

	q := append([]float64(nil), Q...)
	b := make([]float64, len(Q))
	b[0] = seed
	exceed := 0
	for n := 0; n < passes; n++ {
		if n != 0 {
			reverse(b)
			q = append(q[:0], b...)
		}
		for i := 0; i < len(q)-1; i++ {
			b[i+1] = beta*b[i] + (1-beta)/2*(q[i]+q[i+1])
			if b[i+1] > q[i+1] {
				b[i+1] = q[i+1]
				exceed++
			}
		}
	}
	if passes%2 == 0 {
		reverse(b)
	}
	return b, exceed, nil
}

// Chapman applies the single-parameter filter of Chapman (1991).
func Chapman(Q []float64, a float64, init InitialValue) ([]float64, int, error) {
	if a == 3 {
		return nil, 0, fmt.Errorf("%w: Chapman requires a != 3", ErrInvalidParameter)
	}
	c := recursionCoeffs{
		prev:     (3*a - 1) / (3 - a),
		flowPrev: (1 - a) / (3 - a),
		flowNext: (1 - a) / (3 - a),
	}
	return runRecursive(Q, c, init)
}

// ChapmanMaxwell applies the CM filter (Chapman & Maxwell, 1996).
func ChapmanMaxwell(Q []float64, a float64, init InitialValue) ([]float64, int, error) {
	if a == 2 {
		return nil, 0, fmt.Errorf("%w: Chapman-Maxwell requires a != 2", ErrInvalidParameter)
	}
	c := recursionCoeffs{prev: a / (2 - a), flowNext: (1 - a) / (2 - a)}
	return runRecursive(Q, c, init)
}

// Boughton applies the double-parameter filter of Boughton (2004).
// C is calibrated; see Calibrate.
func Boughton(Q []float64, a, C float64, init InitialValue) ([]float64, int, error) {
	if C == -1 {
		return nil, 0, fmt.Errorf("%w: Boughton requires C != -1", ErrInvalidParameter)
	}
	c := recursionCoeffs{prev: a / (1 + C), flowNext: C / (1 + C)}
	return runRecursive(Q, c, init)
}

// Furey applies the physically based filter of Furey & Gupta (2001).
// A is calibrated; see Calibrate.
func Furey(Q []float64, a, A float64, init InitialValue) ([]float64, int, error) {
	c := recursionCoeffs{prev: a - A*(1-a), flowPrev: A * (1 - a)}
	return runRecursive(Q, c, init)
}

// Eckhardt applies the two-parameter filter of Eckhardt (2005). BFImax must
// lie strictly inside (0,1): the recursion denominator 1-a*BFImax degenerates
// at the a*BFImax = 1 boundary, so the closed interval ends are rejected
// outright.
func Eckhardt(Q []float64, a, BFImax float64, init InitialValue) ([]float64, int, error) {
	if BFImax <= 0 || BFImax >= 1 {
		return nil, 0, fmt.Errorf("%w: BFImax must lie in (0,1), got %g", ErrInvalidParameter, BFImax)
	}
	denom := 1 - a*BFImax
	if denom == 0 {
		return nil, 0, fmt.Errorf("%w: a*BFImax must not equal 1", ErrInvalidParameter)
	}
	c := recursionCoeffs{
		prev:     (1 - BFImax) * a / denom,
		flowNext: (1 - a) * BFImax / denom,
	}
	return runRecursive(Q, c, init)
}

// EWMA applies the exponential weighted moving average filter
// (Tularam & Ilahee, 2008) with smoothing parameter e.
func EWMA(Q []float64, e float64, init InitialValue) ([]float64, int, error) {
	c := recursionCoeffs{prev: 1 - e, flowNext: e}
	return runRecursive(Q, c, init)
}

// Willems applies the filter of Willems (2009), where w is the average
// quickflow proportion of streamflow. w is calibrated; see Calibrate.
func Willems(Q []float64, a, w float64, init InitialValue) ([]float64, int, error) {
	if w == 0 {
		return nil, 0, fmt.Errorf("%w: Willems requires w != 0", ErrInvalidParameter)
	}
	v := (1 - w) * (1 - a) / (2 * w)
	if v == -1 {
		return nil, 0, fmt.Errorf("%w: Willems coefficients degenerate for w=%g, a=%g",
			ErrInvalidParameter, w, a)
	}
	c := recursionCoeffs{
		prev:     (a - v) / (1 + v),
		flowPrev: v / (1 + v),
		flowNext: v / (1 + v),
	}
	return runRecursive(Q, c, init)
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
