// Package registry owns the Dataset Registry and the UI side-tables: the
// single piece of mutable shared state in the process, guarded by one
// reader-writer lock.
package registry

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"Wavecache/cache"
	"Wavecache/core"
	"Wavecache/ingest"
	"Wavecache/internal/logger"
	"Wavecache/internal/retry"
)

// materializeRetryConfig governs the wait/re-check loop two concurrent
// ingests of the same cache key fall into: the loser of the temp-file race
// backs off briefly and re-checks completeness rather than erroring out.
var materializeRetryConfig = retry.RetryConfig{
	MaxAttempts:         3,
	InitialBackoff:      50 * time.Millisecond,
	MaxBackoff:          500 * time.Millisecond,
	BackoffFactor:       2.0,
	RandomizationFactor: 0.3,
}

// DefaultLargeFileThreshold is the size, in bytes, at or above which a
// multi-channel file is cache-backed instead of held in memory.
const DefaultLargeFileThreshold = 50 * 1024 * 1024

// Registry holds every ingested dataset plus the UI side-tables. The zero
// value is not usable; construct with New.
type Registry struct {
	mu sync.RWMutex

	cacheDir  string
	index     *cache.Index
	threshold int64

	datasets map[string]*core.Dataset
	order    []string // insertion order; last element is "most recently added"

	// legacy flat map, populated only by small-file, non-multi-channel ingests
	legacy map[string]core.Series

	names     map[string]string
	offsets   map[string]float64
	cutRanges map[string][2]float64
}

// New constructs an empty registry rooted at cacheDir. idx may be nil. A
// threshold of 0 selects DefaultLargeFileThreshold.
func New(cacheDir string, idx *cache.Index, threshold int64) *Registry {
	if threshold <= 0 {
		threshold = DefaultLargeFileThreshold
	}
	return &Registry{
		cacheDir:  cacheDir,
		index:     idx,
		threshold: threshold,
		datasets:  make(map[string]*core.Dataset),
		legacy:    make(map[string]core.Series),
		names:     make(map[string]string),
		offsets:   make(map[string]float64),
		cutRanges: make(map[string][2]float64),
	}
}

// AddMultiChannel ingests a validated 17-column multi-channel file at path,
// classifying it small or large by LargeFileThreshold, and commits a new
// dataset record. CSV parsing and cache materialization happen without the
// lock; only the final commit is guarded.
func (r *Registry) AddMultiChannel(path, stem string) (*core.Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("registry: stat %s: %w", path, err)
	}

	header, err := ingest.ReadHeader(path)
	if err != nil {
		return nil, err
	}
	if err := ingest.ValidateMultiChannelHeader(header); err != nil {
		return nil, err
	}

	large := info.Size() >= r.threshold
	ds := &core.Dataset{
		ID:         uuid.NewString(),
		Name:       stem,
		SourcePath: path,
	}

	channelNames := make([]string, core.MultiChannelCount)
	for i := 1; i <= core.MultiChannelCount; i++ {
		channelNames[i-1] = core.MultiChannelName(i)
	}

	if large {
		key, err := cache.Key(path)
		if err != nil {
			return nil, err
		}
		var rows int
		if r.index != nil {
			if n, ok := r.index.Complete(r.cacheDir, stem, key); ok {
				rows = n
			}
		}
		if rows == 0 {
			// Concurrent ingests of the same source file race to materialize
			// the same cache key. The loser's write still lands (temp files are
			// per-attempt), but a transient collision on rename is retried
			// rather than surfaced, re-checking IsComplete each attempt so a
			// winner's result is picked up instead of redone.
			err = retry.WithRetryConfig(fmt.Sprintf("materialize %s", stem), materializeRetryConfig, func() error {
				var materializeErr error
				rows, materializeErr = cache.Materialize(r.cacheDir, path, stem, key)
				return materializeErr
			})
			if err != nil {
				return nil, err
			}
			if r.index != nil {
				r.index.Record(stem, key, rows)
			}
		}
		timeArr, err := cache.LoadTime(r.cacheDir, stem, key)
		if err != nil {
			return nil, fmt.Errorf("registry: load time column: %w", err)
		}

		ds.SizeClass = core.Large
		ds.Large = &core.LargeHandle{CacheDir: r.cacheDir, Stem: stem, Key: key, Channels: channelNames}
		ds.Metadata = core.Metadata{
			TotalRows:   rows,
			Channels:    channelNames,
			TimeRange:   core.TimeRangeOf(timeArr),
			IsLargeFile: true,
		}
	} else {
		pf, err := ingest.ParseFile(path)
		if err != nil {
			return nil, err
		}
		small := core.NewSmallData()
		if len(pf.Columns) > 0 {
			small.X = pf.Columns[0].X
		}
		for _, col := range pf.Columns {
			small.Order = append(small.Order, col.Name)
			small.Channels[col.Name] = col.Y
		}

		ds.SizeClass = core.Small
		ds.Small = small
		ds.Metadata = core.Metadata{
			TotalRows:   len(small.X),
			Channels:    small.Order,
			TimeRange:   core.TimeRangeOf(small.X),
			IsLargeFile: false,
		}
	}

	r.mu.Lock()
	r.datasets[ds.ID] = ds
	r.order = append(r.order, ds.ID)
	r.mu.Unlock()

	logger.Info("registry: added dataset %s (%s, %d rows)", ds.ID, ds.SizeClass, ds.Metadata.TotalRows)
	return ds, nil
}

// AddLegacy ingests a file outside multi-channel mode, populating the flat
// channel-id -> series map addressed by /data and /align.
func (r *Registry) AddLegacy(path, stem string) error {
	pf, err := ingest.ParseFile(path)
	if err != nil {
		return err
	}

	entries := make(map[string]core.Series, len(pf.Columns))
	if pf.SingleColumn && len(pf.Columns) == 1 {
		c := pf.Columns[0]
		entries[stem] = core.Series{X: c.X, Y: c.Y}
	} else {
		for _, c := range pf.Columns {
			entries[core.LegacyChannelName(stem, c.Name)] = core.Series{X: c.X, Y: c.Y}
		}
	}

	r.mu.Lock()
	for id, s := range entries {
		r.legacy[id] = s
	}
	r.mu.Unlock()
	return nil
}

// Get resolves id to a dataset, falling back to the most recently added
// dataset when id is empty or unknown.
func (r *Registry) Get(id string) (*core.Dataset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveLocked(id)
}

func (r *Registry) resolveLocked(id string) (*core.Dataset, bool) {
	if id != "" {
		if ds, ok := r.datasets[id]; ok {
			return ds, true
		}
	}
	if len(r.order) == 0 {
		return nil, false
	}
	ds, ok := r.datasets[r.order[len(r.order)-1]]
	return ds, ok
}

// All returns every dataset in insertion order.
func (r *Registry) All() []*core.Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*core.Dataset, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.datasets[id])
	}
	return out
}

// LegacySeries returns the flat legacy channel map, snapshotted under the
// read lock.
func (r *Registry) LegacySeries() map[string]core.Series {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]core.Series, len(r.legacy))
	for k, v := range r.legacy {
		out[k] = v
	}
	return out
}

// Rename updates a dataset's display name.
func (r *Registry) Rename(id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ds, ok := r.datasets[id]
	if !ok {
		return fmt.Errorf("registry: unknown dataset %s", id)
	}
	ds.Name = name
	return nil
}

// Clear empties the registry and UI side-tables, and deletes cache files
// owned by the datasets it held. Raw uploaded source files are not
// touched; deleting them is the boundary facade's responsibility.
func (r *Registry) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ds := range r.datasets {
		if ds.SizeClass == core.Large && ds.Large != nil {
			if err := cache.RemoveEntry(ds.Large.CacheDir, ds.Large.Stem, ds.Large.Key); err != nil {
				logger.Warn("registry: clear: remove cache entry for %s: %v", ds.ID, err)
			}
			if r.index != nil {
				r.index.Forget(ds.Large.Stem, ds.Large.Key)
			}
		}
	}

	r.datasets = make(map[string]*core.Dataset)
	r.order = nil
	r.legacy = make(map[string]core.Series)
	r.names = make(map[string]string)
	r.offsets = make(map[string]float64)
	r.cutRanges = make(map[string][2]float64)
	return nil
}

// SetChannelName, Offset and CutRange manage the UI side-tables: passive
// key/value state with no cross-invariants.

func (r *Registry) SetChannelName(channelID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[channelID] = name
}

func (r *Registry) ChannelNames() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.names))
	for k, v := range r.names {
		out[k] = v
	}
	return out
}

func (r *Registry) SetChannelOffset(channelID string, offset float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offsets[channelID] = offset
}

func (r *Registry) ChannelOffsets() map[string]float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]float64, len(r.offsets))
	for k, v := range r.offsets {
		out[k] = v
	}
	return out
}

func (r *Registry) SetChannelCutRange(channelID string, start, end float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cutRanges[channelID] = [2]float64{start, end}
}

func (r *Registry) ChannelCutRanges() map[string][2]float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][2]float64, len(r.cutRanges))
	for k, v := range r.cutRanges {
		out[k] = v
	}
	return out
}
