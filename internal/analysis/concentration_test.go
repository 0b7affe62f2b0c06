package analysis

import (
	"math"
	"testing"
)

func TestConcentrateParetoCut(t *testing.T) {
	counts := map[string]int{"A": 50, "B": 30, "C": 15, "D": 5}
	c := Concentrate("f", counts, SelectPareto, 0.80, 0)
	if c.Total != 100 {
		t.Fatalf("total = %d, want 100", c.Total)
	}
	if len(c.Selected) != 2 || c.Selected[0].Label != "A" || c.Selected[1].Label != "B" {
		t.Fatalf("selected = %#v, want A then B", c.Selected)
	}
	if !almostEqual(c.SelectedPct, 80.0) {
		t.Fatalf("selected pct = %f, want 80", c.SelectedPct)
	}
	if c.OtherCount != 20 || !almostEqual(c.OtherPercent, 20.0) {
		t.Fatalf("other = %d (%.1f%%), want 20 (20%%)", c.OtherCount, c.OtherPercent)
	}
}

func TestConcentrateCompleteness(t *testing.T) {
	cases := []map[string]int{
		{"A": 50, "B": 30, "C": 15, "D": 5},
		{"X": 1},
		{"A": 7, "B": 7, "C": 7},
		{"A": 99, "B": 1},
		{"A": 3, "B": 2, "C": 2, "D": 1, "E": 1, "F": 1},
	}
	for _, counts := range cases {
		c := Concentrate("f", counts, SelectPareto, 0.80, 0)
		sum := c.OtherCount
		for _, cc := range c.Selected {
			sum += cc.Count
		}
		if sum != c.Total {
			t.Fatalf("selected+other = %d, total = %d for %#v", sum, c.Total, counts)
		}
	}
}

func TestConcentrateDominantCategory(t *testing.T) {
	// One category alone exceeding the threshold must be the sole selection.
	c := Concentrate("f", map[string]int{"BIG": 90, "SMALL": 10}, SelectPareto, 0.80, 0)
	if len(c.Selected) != 1 || c.Selected[0].Label != "BIG" {
		t.Fatalf("selected = %#v, want BIG only", c.Selected)
	}
	if c.SelectedPct < 80 {
		t.Fatalf("selected pct = %f, must be >= threshold", c.SelectedPct)
	}
}

func TestConcentrateCrossingCategoryIncluded(t *testing.T) {
	// Cumulative share before C is 75% < 80%, so C itself is included and
	// the achieved share exceeds the threshold.
	c := Concentrate("f", map[string]int{"A": 40, "B": 35, "C": 20, "D": 5}, SelectPareto, 0.80, 0)
	if len(c.Selected) != 3 || c.Selected[2].Label != "C" {
		t.Fatalf("selected = %#v, want A, B, C", c.Selected)
	}
	if !almostEqual(c.SelectedPct, 95.0) {
		t.Fatalf("selected pct = %f, want 95", c.SelectedPct)
	}
}

func TestConcentrateAlwaysSelectsOne(t *testing.T) {
	c := Concentrate("f", map[string]int{"ONLY": 100}, SelectPareto, 0.10, 0)
	if len(c.Selected) != 1 {
		t.Fatalf("selected = %#v, want exactly one", c.Selected)
	}
	if c.OtherCount != 0 {
		t.Fatalf("other = %d, want 0", c.OtherCount)
	}
}

func TestConcentrateZeroTotal(t *testing.T) {
	c := Concentrate("f", map[string]int{}, SelectPareto, 0.80, 0)
	if c.Total != 0 || len(c.Selected) != 0 || c.OtherCount != 0 {
		t.Fatalf("zero-total result = %#v, want empty", c)
	}
	c = Concentrate("f", map[string]int{"A": 0}, SelectPareto, 0.80, 0)
	if c.Total != 0 || len(c.Selected) != 0 {
		t.Fatalf("zero-count result = %#v, want empty", c)
	}
}

func TestConcentrateTieOrdering(t *testing.T) {
	c := Concentrate("f", map[string]int{"ZETA": 10, "ALPHA": 10, "MID": 20}, SelectPareto, 0.99, 0)
	want := []string{"MID", "ALPHA", "ZETA"}
	for i, label := range want {
		if c.Selected[i].Label != label {
			t.Fatalf("rank %d = %q, want %q (full: %#v)", i, c.Selected[i].Label, label, c.Selected)
		}
	}
}

func TestConcentrateTopK(t *testing.T) {
	counts := map[string]int{"A": 50, "B": 30, "C": 15, "D": 5}
	c := Concentrate("f", counts, SelectTopK, 0.80, 2)
	if len(c.Selected) != 2 || c.Selected[0].Label != "A" || c.Selected[1].Label != "B" {
		t.Fatalf("top-2 = %#v", c.Selected)
	}
	if c.OtherCount != 20 {
		t.Fatalf("other = %d, want 20", c.OtherCount)
	}
	// K larger than the category set selects everything.
	c = Concentrate("f", counts, SelectTopK, 0.80, 10)
	if len(c.Selected) != 4 || c.OtherCount != 0 {
		t.Fatalf("top-10 = %#v other %d", c.Selected, c.OtherCount)
	}
}

func TestConcentrateCumulativePercentages(t *testing.T) {
	c := Concentrate("f", map[string]int{"A": 50, "B": 30, "C": 15, "D": 5}, SelectTopK, 0.80, 4)
	wantCum := []float64{50, 80, 95, 100}
	for i, cc := range c.Selected {
		if !almostEqual(cc.CumulativePct, wantCum[i]) {
			t.Fatalf("cum[%d] = %f, want %f", i, cc.CumulativePct, wantCum[i])
		}
	}
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) <= 1e-9 }
