package storage

import (
	"context"
	"testing"

	"github.com/hydrographs/baseflow/internal/station"
)

func TestSaveAndLoadRun(t *testing.T) {
	s, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	results := map[string]*station.Result{
		"alder": {
			Baseflow:   map[station.Method][]float64{station.MethodLH: {1.0, 1.5, 2.0}},
			Parameters: map[station.Method]float64{station.MethodLH: 0.925},
			KGE:        map[station.Method]float64{station.MethodLH: 0.87},
			BFI:        map[station.Method]float64{station.MethodLH: 0.6},
			RecessionA: 0.95,
		},
	}

	ctx := context.Background()
	runID, err := s.SaveRun(ctx, results)
	if err != nil {
		t.Fatal(err)
	}
	if runID == "" {
		t.Fatal("empty run ID")
	}

	sums, err := s.RunSummaries(ctx, runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 1 {
		t.Fatalf("got %d summaries, want 1", len(sums))
	}
	got := sums[0]
	if got.Station != "alder" || got.Method != "LH" {
		t.Errorf("summary = %+v", got)
	}
	if got.Parameter != 0.925 || got.KGE != 0.87 || got.BFI != 0.6 || got.RecessionA != 0.95 {
		t.Errorf("summary values = %+v", got)
	}

	b, err := s.Baseflow(ctx, runID, "alder", "LH")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1.0, 1.5, 2.0}
	if len(b) != len(want) {
		t.Fatalf("series len %d, want %d", len(b), len(want))
	}
	for i := range want {
		if b[i] != want[i] {
			t.Errorf("b[%d] = %v, want %v", i, b[i], want[i])
		}
	}
}

func TestRunSummariesUnknownRun(t *testing.T) {
	s, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	sums, err := s.RunSummaries(context.Background(), "no-such-run")
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 0 {
		t.Errorf("got %d summaries for unknown run", len(sums))
	}
}
