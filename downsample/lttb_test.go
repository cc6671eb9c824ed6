package downsample

import (
	"math"
	"testing"

	"Wavecache/core"
)

func linspace(n int) core.Series {
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i)
		y[i] = math.Sin(float64(i) / 10)
	}
	return core.Series{X: x, Y: y}
}

func TestLTTBBoundaryPreservation(t *testing.T) {
	s := linspace(1000)
	k := 100
	out := LTTB(s, k)

	if out.Len() != k {
		t.Fatalf("expected %d points, got %d", k, out.Len())
	}
	if out.X[0] != s.X[0] || out.Y[0] != s.Y[0] {
		t.Fatalf("first point not preserved")
	}
	if out.X[k-1] != s.X[s.Len()-1] || out.Y[k-1] != s.Y[s.Len()-1] {
		t.Fatalf("last point not preserved")
	}

	originals := make(map[float64]float64, s.Len())
	for i := range s.X {
		originals[s.X[i]] = s.Y[i]
	}
	for i := range out.X {
		y, ok := originals[out.X[i]]
		if !ok || y != out.Y[i] {
			t.Fatalf("output sample %d is not an original sample", i)
		}
	}
}

func TestLTTBMonotonicity(t *testing.T) {
	s := linspace(500)
	out := LTTB(s, 50)
	for i := 1; i < out.Len(); i++ {
		if out.X[i] < out.X[i-1] {
			t.Fatalf("x not monotonic at %d: %v < %v", i, out.X[i], out.X[i-1])
		}
	}
}

func TestLTTBPassthroughWhenSmall(t *testing.T) {
	s := linspace(10)
	out := LTTB(s, 20)
	if out.Len() != s.Len() {
		t.Fatalf("expected passthrough of %d points, got %d", s.Len(), out.Len())
	}
}
