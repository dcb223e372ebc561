package baseflow

import (
	"errors"
	"math"
	"testing"
)

// synthFlow builds a deterministic flow series with exponential recessions
// interrupted by periodic runoff events.
func synthFlow(n int) []float64 {
	Q := make([]float64, n)
	level := 20.0
	for i := 0; i < n; i++ {
		if i%60 == 0 {
			level += 35
		}
		level = 2 + (level-2)*0.94
		Q[i] = level
	}
	return Q
}

func TestLHSinglePass(t *testing.T) {
	Q := []float64{10, 15, 20, 18, 12}
	b, exceed, err := LHMulti(Q, 0.925, 1, SeedQ0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []float64{10, 10.1875, 10.7359375, 11.35574219, 11.62906152}
	for i, want := range expected {
		if math.Abs(b[i]-want) > 1e-6 {
			t.Errorf("sample %d: expected %.8f, got %.8f", i, want, b[i])
		}
		if b[i] > Q[i] {
			t.Errorf("sample %d: baseflow %.4f exceeds flow %.4f", i, b[i], Q[i])
		}
	}
	if b[0] != 10 {
		t.Errorf("expected b[0]=10 exactly, got %v", b[0])
	}
	if exceed != 0 {
		t.Errorf("expected no exceedances, got %d", exceed)
	}
}

func TestLHTwoPassMatchesLHMulti(t *testing.T) {
	Q := synthFlow(120)
	direct, _, err := LH(Q, DefaultBeta, SeedQ0)
	if err != nil {
		t.Fatalf("LH: %v", err)
	}
	multi, _, err := LHMulti(Q, DefaultBeta, 2, SeedQ0)
	if err != nil {
		t.Fatalf("LHMulti: %v", err)
	}
	for i := range direct {
		if math.Abs(direct[i]-multi[i]) > 1e-12 {
			t.Fatalf("sample %d: two-pass LH %.12f != LHMulti(2) %.12f", i, direct[i], multi[i])
		}
	}
}

func TestLHMultiParity(t *testing.T) {
	Q := synthFlow(90)
	for _, passes := range []int{1, 2, 3, 4} {
		b, _, err := LHMulti(Q, DefaultBeta, passes, SeedQ0)
		if err != nil {
			t.Fatalf("passes=%d: %v", passes, err)
		}
		if len(b) != len(Q) {
			t.Fatalf("passes=%d: length %d != %d", passes, len(b), len(Q))
		}
		// output must be in input orientation: clipped below flow everywhere
		for i := range b {
			if b[i] > Q[i]+1e-9 {
				t.Errorf("passes=%d sample %d: baseflow %.4f exceeds flow %.4f", passes, i, b[i], Q[i])
			}
		}
	}
}

func TestFiltersClipToFlow(t *testing.T) {
	Q := synthFlow(200)
	const a = 0.95

	filters := []struct {
		name string
		run  func() ([]float64, int, error)
	}{
		{"LH", func() ([]float64, int, error) { return LH(Q, DefaultBeta, SeedQ0) }},
		{"Chapman", func() ([]float64, int, error) { return Chapman(Q, a, SeedQ0) }},
		{"ChapmanMaxwell", func() ([]float64, int, error) { return ChapmanMaxwell(Q, a, SeedQ0) }},
		{"Boughton", func() ([]float64, int, error) { return Boughton(Q, a, 0.05, SeedQ0) }},
		{"Furey", func() ([]float64, int, error) { return Furey(Q, a, 0.5, SeedQ0) }},
		{"Eckhardt", func() ([]float64, int, error) { return Eckhardt(Q, a, 0.8, SeedQ0) }},
		{"EWMA", func() ([]float64, int, error) { return EWMA(Q, 0.01, SeedQ0) }},
		{"Willems", func() ([]float64, int, error) { return Willems(Q, a, 0.5, SeedQ0) }},
	}

	for _, tt := range filters {
		t.Run(tt.name, func(t *testing.T) {
			b, _, err := tt.run()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(b) != len(Q) {
				t.Fatalf("length %d != %d", len(b), len(Q))
			}
			for i := range b {
				if b[i] > Q[i] {
					t.Errorf("sample %d: baseflow %.6f exceeds flow %.6f", i, b[i], Q[i])
				}
			}
		})
	}
}

func TestFilterDeterminism(t *testing.T) {
	Q := synthFlow(150)
	b1, e1, err := Eckhardt(Q, 0.95, 0.8, SeedQ0)
	if err != nil {
		t.Fatal(err)
	}
	b2, e2, err := Eckhardt(Q, 0.95, 0.8, SeedQ0)
	if err != nil {
		t.Fatal(err)
	}
	if e1 != e2 {
		t.Fatalf("exceed counts differ: %d vs %d", e1, e2)
	}
	for i := range b1 {
		if b1[i] != b2[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, b1[i], b2[i])
		}
	}
}

func TestExceedCount(t *testing.T) {
	// e=0 freezes the recursion at the seed, so every declining step clips
	Q := []float64{10, 5, 4, 3}
	b, exceed, err := EWMA(Q, 0, SeedQ0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exceed != 3 {
		t.Errorf("expected 3 exceedances, got %d", exceed)
	}
	for i := range b {
		if b[i] != Q[i] {
			t.Errorf("sample %d: expected clip to flow %v, got %v", i, Q[i], b[i])
		}
	}
}

func TestEckhardtInvalidParameter(t *testing.T) {
	Q := []float64{10, 9, 8, 7, 6}
	tests := []struct {
		name      string
		a, bfiMax float64
	}{
		{"BFImax=1", 0.95, 1},
		{"BFImax=0", 0.95, 0},
		{"BFImax>1", 0.95, 1.5},
		{"a*BFImax=1", 2, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Eckhardt(Q, tt.a, tt.bfiMax, SeedQ0); !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestDegenerateParameters(t *testing.T) {
	Q := []float64{10, 9, 8, 7, 6}
	if _, _, err := Boughton(Q, 0.95, -1, SeedQ0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Boughton C=-1: expected ErrInvalidParameter, got %v", err)
	}
	if _, _, err := Willems(Q, 0.95, 0, SeedQ0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Willems w=0: expected ErrInvalidParameter, got %v", err)
	}
	if _, _, err := Chapman(Q, 3, SeedQ0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Chapman a=3: expected ErrInvalidParameter, got %v", err)
	}
	if _, _, err := LHMulti(Q, DefaultBeta, 0, SeedQ0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("LHMulti passes=0: expected ErrInvalidParameter, got %v", err)
	}
}

func TestInitialValuePolicies(t *testing.T) {
	Q := []float64{10, 9, 8, 2, 6, 7}

	b, _, err := ChapmanMaxwell(Q, 0.9, SeedMin)
	if err != nil {
		t.Fatal(err)
	}
	if b[0] != 2 {
		t.Errorf("SeedMin: expected b[0]=2, got %v", b[0])
	}

	b, _, err = ChapmanMaxwell(Q, 0.9, SeedLiteral(4.5))
	if err != nil {
		t.Fatal(err)
	}
	if b[0] != 4.5 {
		t.Errorf("SeedLiteral: expected b[0]=4.5, got %v", b[0])
	}

	if _, _, err := ChapmanMaxwell(Q, 0.9, InitialValue{Method: "bogus"}); !errors.Is(err, ErrInvalidInitialValue) {
		t.Errorf("expected ErrInvalidInitialValue, got %v", err)
	}
}

func TestShortSeries(t *testing.T) {
	if _, _, err := LH([]float64{5}, DefaultBeta, SeedQ0); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}
