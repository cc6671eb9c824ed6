package align

import (
	"math"
	"testing"
)

func sine(n int, period float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * float64(i) / period)
	}
	return out
}

func shiftRight(s []float64, k int) []float64 {
	out := make([]float64, len(s)+k)
	copy(out[k:], s)
	return out
}

func TestLagIdentitySelf(t *testing.T) {
	s := sine(500, 37)
	if got := Lag(s, s); got != 0 {
		t.Fatalf("lag(s,s) = %d, want 0", got)
	}
}

func TestLagIdentityShift(t *testing.T) {
	s := sine(500, 53)
	shifted := shiftRight(s, 7)
	if got := Lag(s, shifted); got != 7 {
		t.Fatalf("lag(s, shift(s,7)) = %d, want 7", got)
	}
}

func TestLagUsesFFTAboveThreshold(t *testing.T) {
	s := sine(3000, 97)
	shifted := shiftRight(s, 15)
	if got := Lag(s, shifted); got != 15 {
		t.Fatalf("lag above FFT threshold = %d, want 15", got)
	}
}

func TestHierarchicalSelfConsistency(t *testing.T) {
	a := sine(400, 41)
	b := shiftRight(a, 3)
	c := shiftRight(a, 10)

	series := map[string][]float64{"A": a, "B": b, "C": c}
	groups := map[string][]string{
		"Normal": {"A", "B"},
		"Abn":    {"C"},
	}
	offsets := Hierarchical(groups, series, nil, "Normal")

	if offsets["A"] != 0 {
		t.Fatalf("A offset = %d, want 0", offsets["A"])
	}
	if offsets["B"] != 3 {
		t.Fatalf("B offset = %d, want 3", offsets["B"])
	}
	if offsets["C"] != 10 {
		t.Fatalf("C offset = %d, want 10", offsets["C"])
	}
}
