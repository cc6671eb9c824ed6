// Package core defines the shared data model: series, channels and
// datasets that the rest of Wavecache operates on.
package core

import "errors"

// ErrLengthMismatch is returned when a series' x and y slices disagree in length.
var ErrLengthMismatch = errors.New("core: x and y length mismatch")

// Series is an ordered pair of equal-length numeric sequences. X is
// non-strictly monotonically non-decreasing; it is either an explicit time
// column or a synthetic row index.
type Series struct {
	X []float64
	Y []float64
}

// Len returns the number of samples in the series.
func (s Series) Len() int {
	return len(s.X)
}

// Validate checks the length invariant between X and Y.
func (s Series) Validate() error {
	if len(s.X) != len(s.Y) {
		return ErrLengthMismatch
	}
	return nil
}

// TimeRange is the inclusive [first, last] span of a series' x axis.
type TimeRange struct {
	First float64
	Last  float64
}

// TimeRangeOf derives the time range of a non-empty x axis.
func TimeRangeOf(x []float64) TimeRange {
	if len(x) == 0 {
		return TimeRange{}
	}
	return TimeRange{First: x[0], Last: x[len(x)-1]}
}
