package station

import (
	"context"
	"math"
	"testing"

	"go.uber.org/zap"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// synthFlow builds a spiky flow record with exponential recessions, long
// enough for the classifiers to find recession periods.
func synthFlow(n int) []float64 {
	q := make([]float64, n)
	level := 12.0
	for i := range q {
		if i%60 == 0 {
			level += 35
		}
		level = 2 + (level-2)*0.94
		q[i] = level
	}
	return q
}

func TestParseMethods(t *testing.T) {
	all, err := ParseMethods("all")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 12 {
		t.Errorf("all = %d methods, want 12", len(all))
	}

	got, err := ParseMethods(" eckhardt, LH ,ukih")
	if err != nil {
		t.Fatal(err)
	}
	want := []Method{MethodEckhardt, MethodLH, MethodUKIH}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if _, err := ParseMethods("LH,bogus"); err == nil {
		t.Error("unknown method accepted")
	}
}

func TestSeparatorRunBasics(t *testing.T) {
	Q := synthFlow(400)
	sep := NewSeparator(testLogger(), []Method{MethodLH, MethodFixed, MethodSlide, MethodUKIH})
	res, err := sep.Run(context.Background(), Q, 250, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Skipped) != 0 {
		t.Fatalf("skipped methods: %v", res.Skipped)
	}
	for m, b := range res.Baseflow {
		if len(b) != len(Q) {
			t.Fatalf("%s: len %d, want %d", m, len(b), len(Q))
		}
		for i := range b {
			if b[i] > Q[i]+1e-9 {
				t.Fatalf("%s: b[%d]=%v exceeds Q=%v", m, i, b[i], Q[i])
			}
			if b[i] < 0 || math.IsNaN(b[i]) {
				t.Fatalf("%s: b[%d]=%v", m, i, b[i])
			}
		}
		bfi := res.BFI[m]
		if bfi <= 0 || bfi > 1 {
			t.Errorf("%s: BFI = %v", m, bfi)
		}
	}
	if res.Parameters[MethodLH] != 0.925 {
		t.Errorf("LH parameter = %v, want 0.925", res.Parameters[MethodLH])
	}
	if len(res.Strict) != len(Q) {
		t.Errorf("strict mask len %d", len(res.Strict))
	}
}

func TestSeparatorRecessionMethods(t *testing.T) {
	Q := synthFlow(600)
	sep := NewSeparator(testLogger(), []Method{MethodChapman, MethodEckhardt})
	res, err := sep.Run(context.Background(), Q, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Skipped) != 0 {
		t.Fatalf("skipped methods: %v", res.Skipped)
	}
	if res.RecessionA <= 0 || res.RecessionA >= 1 {
		t.Fatalf("recession a = %v", res.RecessionA)
	}
	p, ok := res.Parameters[MethodEckhardt]
	if !ok || p <= 0 || p >= 1 {
		t.Errorf("Eckhardt BFImax = %v (found %v)", p, ok)
	}
	for _, m := range []Method{MethodChapman, MethodEckhardt} {
		if _, ok := res.Baseflow[m]; !ok {
			t.Errorf("no baseflow for %s", m)
		}
	}
}

func TestSeparatorRecessionFailureSkipsDependents(t *testing.T) {
	// Strictly increasing flow has no recession limbs; methods needing the
	// recession coefficient must be skipped, independent ones still run.
	Q := make([]float64, 120)
	for i := range Q {
		Q[i] = 1 + float64(i)
	}
	sep := NewSeparator(testLogger(), []Method{MethodLH, MethodChapman})
	res, err := sep.Run(context.Background(), Q, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := res.Baseflow[MethodLH]; !ok {
		t.Error("LH should still run")
	}
	if _, ok := res.Skipped[MethodChapman]; !ok {
		t.Error("Chapman should be skipped without a recession coefficient")
	}
}

func TestSeparatorRejectsBadInput(t *testing.T) {
	sep := NewSeparator(testLogger(), nil)
	if _, err := sep.Run(context.Background(), []float64{1, 2}, 0, nil); err == nil {
		t.Error("short series accepted")
	}
	if _, err := sep.Run(context.Background(), []float64{1, 2, -3, 4, 5, 6}, 0, nil); err == nil {
		t.Error("negative flow accepted")
	}
}

func TestBatchIsolatesFailures(t *testing.T) {
	good := &Station{Series: &Series{Name: "good", Flow: synthFlow(400)}}
	bad := &Station{Series: &Series{Name: "bad", Flow: []float64{1, 2}}}
	b := NewBatch(testLogger(), NewSeparator(testLogger(), []Method{MethodLH}), 2)
	results, failures := b.Run(context.Background(), []*Station{good, bad})
	if _, ok := results["good"]; !ok {
		t.Error("good station missing from results")
	}
	if _, ok := failures["bad"]; !ok {
		t.Error("bad station missing from failures")
	}
	if _, ok := results["bad"]; ok {
		t.Error("bad station present in results")
	}
}
