package align

import (
	"errors"
	"fmt"
	"sort"

	"Wavecache/core"
	"Wavecache/query"
)

// ErrInvalidRequest signals an alignment request with fewer than two
// datasets.
var ErrInvalidRequest = errors.New("align: at least two datasets are required")

// ErrReferenceSignal signals that the named channel could not be read from
// the reference dataset.
var ErrReferenceSignal = errors.New("align: reference signal unavailable")

const defaultTargetPoints = 5000

// Dataset computes multi-channel dataset alignment offsets: for every
// participating dataset, the named
// channel is fetched within [cutStart, cutEnd] and downsampled to
// targetPoints (0 selects the default of 5000), then correlated against
// the reference dataset's signal. The integer lag is converted to a time
// offset using the reference series' median inter-sample Δt. The
// reference dataset itself is reported at offset 0.
func Dataset(datasets []*core.Dataset, channel string, referenceID string, cutStart, cutEnd float64, targetPoints int) (map[string]float64, error) {
	if len(datasets) < 2 {
		return map[string]float64{}, ErrInvalidRequest
	}
	if targetPoints <= 0 {
		targetPoints = defaultTargetPoints
	}

	byID := make(map[string]*core.Dataset, len(datasets))
	for _, ds := range datasets {
		byID[ds.ID] = ds
	}

	ref, ok := byID[referenceID]
	if !ok {
		ref = datasets[0]
	}

	refSeries, err := query.ByTime(ref, channel, cutStart, cutEnd, targetPoints)
	if err != nil {
		return map[string]float64{}, fmt.Errorf("%w: dataset %s: %v", ErrReferenceSignal, ref.ID, err)
	}
	if refSeries.Len() == 0 {
		return map[string]float64{}, fmt.Errorf("%w: dataset %s: empty series", ErrReferenceSignal, ref.ID)
	}
	dt := medianDelta(refSeries.X)

	offsets := make(map[string]float64, len(datasets))
	for _, ds := range datasets {
		if ds.ID == ref.ID {
			offsets[ds.ID] = 0
			continue
		}
		s, err := query.ByTime(ds, channel, cutStart, cutEnd, targetPoints)
		if err != nil || s.Len() < 2 {
			offsets[ds.ID] = 0
			continue
		}
		lag := Lag(refSeries.Y, s.Y)
		offsets[ds.ID] = float64(lag) * dt
	}
	return offsets, nil
}

// medianDelta returns the median inter-sample spacing of a non-decreasing
// x axis, falling back to 1.0 when x is too short or not finite.
func medianDelta(x []float64) float64 {
	if len(x) < 2 {
		return 1.0
	}
	deltas := make([]float64, 0, len(x)-1)
	for i := 1; i < len(x); i++ {
		d := x[i] - x[i-1]
		if !isFinite(d) {
			continue
		}
		deltas = append(deltas, d)
	}
	if len(deltas) == 0 {
		return 1.0
	}
	sort.Float64s(deltas)
	mid := len(deltas) / 2
	if len(deltas)%2 == 1 {
		return deltas[mid]
	}
	return (deltas[mid-1] + deltas[mid]) / 2
}

func isFinite(v float64) bool {
	return v == v && v < 1e308 && v > -1e308
}
