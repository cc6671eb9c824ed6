package api

import (
	"net/http"
	"path"
	"strings"
	"time"

	"Wavecache/core"
	"Wavecache/internal/metrics"
	"Wavecache/query"
	"Wavecache/registry"
)

func sizeClassLabel(ds *core.Dataset) string {
	if ds == nil {
		return "unknown"
	}
	return ds.SizeClass.String()
}

type metadataJSON struct {
	DatasetID   string     `json:"dataset_id,omitempty"`
	TotalRows   int        `json:"total_rows"`
	Channels    []string   `json:"channels"`
	TimeRange   [2]float64 `json:"time_range"`
	IsLargeFile bool       `json:"is_large_file"`
}

func datasetMetadataJSON(ds *core.Dataset) metadataJSON {
	if ds == nil {
		return metadataJSON{Channels: []string{}}
	}
	return metadataJSON{
		DatasetID:   ds.ID,
		TotalRows:   ds.Metadata.TotalRows,
		Channels:    ds.Metadata.Channels,
		TimeRange:   [2]float64{ds.Metadata.TimeRange.First, ds.Metadata.TimeRange.Last},
		IsLargeFile: ds.Metadata.IsLargeFile,
	}
}

// legacyAggregateMetadataJSON summarizes the legacy flat map as one
// aggregate metadata record, for responses where multi-channel mode is
// not in play.
func legacyAggregateMetadataJSON(reg *registry.Registry) metadataJSON {
	legacy := reg.LegacySeries()
	m := metadataJSON{Channels: make([]string, 0, len(legacy))}
	for id, s := range legacy {
		m.Channels = append(m.Channels, id)
		if s.Len() > m.TotalRows {
			m.TotalRows = s.Len()
		}
		tr := core.TimeRangeOf(s.X)
		if m.TimeRange == [2]float64{} {
			m.TimeRange = [2]float64{tr.First, tr.Last}
		}
	}
	return m
}

// handleData serves the legacy flat map: channel_id -> {x,y}.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	legacy := s.reg.LegacySeries()
	out := make(map[string]seriesJSON, len(legacy))
	for id, series := range legacy {
		out[id] = seriesJSON{X: series.X, Y: series.Y}
	}
	writeJSON(w, out)
}

// handleMetadata serves a dataset's metadata, or the legacy aggregate when
// dataset_id does not resolve to a multi-channel dataset.
func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("dataset_id")
	if ds, ok := s.reg.Get(id); ok {
		writeJSON(w, datasetMetadataJSON(ds))
		return
	}
	writeJSON(w, legacyAggregateMetadataJSON(s.reg))
}

func channelIDFromPath(r *http.Request, prefix string) string {
	trimmed := strings.TrimPrefix(r.URL.Path, prefix)
	return path.Clean(trimmed)
}

// handleChannelData serves an index-range downsampled slice.
func (s *Server) handleChannelData(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { metrics.QueryDuration.WithLabelValues("channel-data").Observe(time.Since(start).Seconds()) }()

	channel := channelIDFromPath(r, "/channel-data/")
	datasetID := r.URL.Query().Get("dataset_id")
	ds, ok := s.reg.Get(datasetID)
	if !ok {
		writeJSON(w, seriesJSON{X: []float64{}, Y: []float64{}})
		return
	}

	startIdx := queryInt(r, "start_idx", 0)
	endIdx := queryInt(r, "end_idx", -1)
	target := queryInt(r, "target_points", s.cfg.DefaultTargetPoints)

	series, err := query.ByIndex(ds, channel, startIdx, endIdx, target)
	if err != nil {
		writeJSON(w, seriesJSON{X: []float64{}, Y: []float64{}})
		return
	}
	writeJSON(w, seriesJSON{X: series.X, Y: series.Y})
}

// handleChannelDataByTime serves a time-range downsampled slice.
func (s *Server) handleChannelDataByTime(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.QueryDuration.WithLabelValues("channel-data-by-time").Observe(time.Since(start).Seconds())
	}()

	channel := channelIDFromPath(r, "/channel-data-by-time/")
	datasetID := r.URL.Query().Get("dataset_id")
	ds, ok := s.reg.Get(datasetID)
	if !ok {
		writeJSON(w, seriesJSON{X: []float64{}, Y: []float64{}})
		return
	}

	startTime := queryFloat(r, "start_time", 0.0)
	endTime := queryFloat(r, "end_time", 1e10)
	target := queryInt(r, "target_points", s.cfg.DefaultTargetPoints)

	series, err := query.ByTime(ds, channel, startTime, endTime, target)
	if err != nil {
		writeJSON(w, seriesJSON{X: []float64{}, Y: []float64{}})
		return
	}
	writeJSON(w, seriesJSON{X: series.X, Y: series.Y})
}

// handleChannels lists every channel id known to the process, across
// legacy and multi-channel datasets, plus display names and mode flags.
func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	channelSet := make(map[string]bool)
	for id := range s.reg.LegacySeries() {
		channelSet[id] = true
	}
	multiChannel := false
	for _, ds := range s.reg.All() {
		for _, ch := range ds.Metadata.Channels {
			channelSet[ch] = true
		}
		multiChannel = true
	}

	channels := make([]string, 0, len(channelSet))
	for id := range channelSet {
		channels = append(channels, id)
	}

	writeJSON(w, map[string]any{
		"channels":           channels,
		"channel_names":      s.reg.ChannelNames(),
		"multi_channel_mode": multiChannel,
	})
}
