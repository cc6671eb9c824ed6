// Package align implements the Alignment Engine: a zero-mean
// cross-correlation primitive, hierarchical multi-group alignment, and
// multi-channel dataset alignment built on top of it.
package align

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// fftThreshold is the combined input length above which Lag uses FFT-based
// convolution instead of direct summation.
const fftThreshold = 4096

// Lag computes the cross-correlation lag of target against template: both
// are zero-mean normalized (no variance scaling), the full linear
// cross-correlation of length len(template)+len(target)-1 is computed, and
// the returned lag is (len(target)-1) - argmax(c). Ties break toward the
// smaller index. Positive means target must shift right to match template.
func Lag(template, target []float64) int {
	if len(template) == 0 || len(target) == 0 {
		return 0
	}

	t := zeroMean(template)
	s := zeroMean(target)

	var c []float64
	if len(t)+len(s) > fftThreshold {
		c = crossCorrelateFFT(t, s)
	} else {
		c = crossCorrelateDirect(t, s)
	}

	best := 0
	bestVal := math.Inf(-1)
	for i, v := range c {
		if v > bestVal {
			bestVal = v
			best = i
		}
	}
	// crossCorrelate* peaks at index len(s)-1-D when target is template
	// delayed by D samples, so argmax - (len(s)-1) gives -D; negate so a
	// positive lag means target must shift right to match template.
	return (len(s) - 1) - best
}

func zeroMean(x []float64) []float64 {
	if len(x) == 0 {
		return x
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	mean := sum / float64(len(x))
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v - mean
	}
	return out
}

// crossCorrelateDirect computes the full linear cross-correlation of a
// (template) and b (target): c[k] = sum_i a[i] * b[i - k + len(b) - 1].
// Equivalently, c is the convolution of a with the time-reversed b.
func crossCorrelateDirect(a, b []float64) []float64 {
	n := len(a) + len(b) - 1
	c := make([]float64, n)
	for k := 0; k < n; k++ {
		var sum float64
		// c[k] corresponds to shifting b so its last sample aligns with
		// a[k]; equivalent to convolving a with reversed b.
		for i := 0; i < len(a); i++ {
			j := k - i
			if j < 0 || j >= len(b) {
				continue
			}
			sum += a[i] * b[len(b)-1-j]
		}
		c[k] = sum
	}
	return c
}

// crossCorrelateFFT computes the same result as crossCorrelateDirect using
// FFT-based convolution, for O(n log n) performance on large inputs.
func crossCorrelateFFT(a, b []float64) []float64 {
	n := len(a) + len(b) - 1
	size := nextPow2(n)

	revB := make([]float64, len(b))
	for i, v := range b {
		revB[len(b)-1-i] = v
	}

	fa := make([]float64, size)
	fb := make([]float64, size)
	copy(fa, a)
	copy(fb, revB)

	fft := fourier.NewFFT(size)
	ca := fft.Coefficients(nil, fa)
	cb := fft.Coefficients(nil, fb)

	prod := make([]complex128, len(ca))
	for i := range ca {
		prod[i] = ca[i] * cb[i]
	}

	out := fft.Sequence(nil, prod)
	res := make([]float64, n)
	for i := 0; i < n; i++ {
		res[i] = out[i] / float64(size)
	}
	return res
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
