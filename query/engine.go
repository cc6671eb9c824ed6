// Package query implements the Slice/Query Engine: index-range and
// time-range retrieval over a resolved dataset and channel, downsampled to
// a target point budget via LTTB when the slice is larger than requested.
package query

import (
	"fmt"
	"sort"

	"Wavecache/cache"
	"Wavecache/core"
	"Wavecache/downsample"
)

// ErrChannelNotFound is returned when a channel id is not present on a
// dataset.
var ErrChannelNotFound = fmt.Errorf("query: channel not found")

// ByIndex slices [start, end) of ds's named channel and downsamples to at
// most k points. start defaults to 0 and end to the dataset's total row
// count by passing negative values; an out-of-range end is clipped.
func ByIndex(ds *core.Dataset, channel string, start, end, k int) (core.Series, error) {
	x, y, err := load(ds, channel)
	if err != nil {
		return core.Series{}, err
	}
	return sliceAndSample(x, y, start, end, k), nil
}

// ByTime slices the [tStart, tEnd] time window of ds's named channel, via
// binary search over its time axis, and downsamples to at most k points.
// The channel is loaded once; cache-backed datasets are not re-read to
// convert the time window into indices.
func ByTime(ds *core.Dataset, channel string, tStart, tEnd float64, k int) (core.Series, error) {
	x, y, err := load(ds, channel)
	if err != nil {
		return core.Series{}, err
	}

	start := lowerBound(x, tStart)
	end := upperBound(x, tEnd)
	return sliceAndSample(x, y, start, end, k), nil
}

func sliceAndSample(x, y []float64, start, end, k int) core.Series {
	n := len(x)
	if start < 0 {
		start = 0
	}
	if end < 0 || end > n {
		end = n
	}
	if start > end {
		return core.Series{}
	}

	s := core.Series{X: x[start:end], Y: y[start:end]}
	if s.Len() > k {
		return downsample.LTTB(s, k)
	}
	return s
}

func load(ds *core.Dataset, channel string) (x, y []float64, err error) {
	switch ds.SizeClass {
	case core.Small:
		if ds.Small == nil {
			return nil, nil, ErrChannelNotFound
		}
		cy, ok := ds.Small.Channel(channel)
		if !ok {
			return nil, nil, ErrChannelNotFound
		}
		return ds.Small.X, cy, nil
	case core.Large:
		if ds.Large == nil {
			return nil, nil, ErrChannelNotFound
		}
		if !channelKnown(ds.Large.Channels, channel) {
			return nil, nil, ErrChannelNotFound
		}
		tm, err := cache.LoadTime(ds.Large.CacheDir, ds.Large.Stem, ds.Large.Key)
		if err != nil {
			return nil, nil, fmt.Errorf("query: load time column: %w", err)
		}
		cy, err := cache.LoadChannel(ds.Large.CacheDir, ds.Large.Stem, channel, ds.Large.Key)
		if err != nil {
			return nil, nil, fmt.Errorf("query: load channel %s: %w", channel, err)
		}
		return tm, cy, nil
	default:
		return nil, nil, ErrChannelNotFound
	}
}

func channelKnown(channels []string, id string) bool {
	for _, c := range channels {
		if c == id {
			return true
		}
	}
	return false
}

// lowerBound returns the first index i such that x[i] >= t.
func lowerBound(x []float64, t float64) int {
	return sort.Search(len(x), func(i int) bool { return x[i] >= t })
}

// upperBound returns the first index i such that x[i] > t.
func upperBound(x []float64, t float64) int {
	return sort.Search(len(x), func(i int) bool { return x[i] > t })
}
