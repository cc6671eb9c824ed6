package api

import (
	"encoding/json"
	"net/http"
	"path"
	"strings"
	"time"

	"Wavecache/align"
	"Wavecache/core"
	"Wavecache/internal/metrics"
)

// handleMultiChannelDatasets lists metadata for every dataset in the
// registry in insertion order.
func (s *Server) handleMultiChannelDatasets(w http.ResponseWriter, r *http.Request) {
	datasets := s.reg.All()
	out := make([]metadataJSON, 0, len(datasets))
	for _, ds := range datasets {
		m := datasetMetadataJSON(ds)
		out = append(out, m)
	}
	writeJSON(w, map[string]any{"datasets": out})
}

// handleMultiChannelData serves the full data of a small multi-channel
// dataset as channel -> {x,y}; large datasets return an empty object,
// since their channel arrays are not resident in memory.
func (s *Server) handleMultiChannelData(w http.ResponseWriter, r *http.Request) {
	id := path.Clean(strings.TrimPrefix(r.URL.Path, "/multi-channel/data/"))
	ds, ok := s.reg.Get(id)
	if !ok {
		writeJSON(w, map[string]seriesJSON{})
		return
	}
	if ds.SizeClass != core.Small || ds.Small == nil {
		writeJSON(w, map[string]seriesJSON{})
		return
	}

	out := make(map[string]seriesJSON, len(ds.Small.Order))
	for _, name := range ds.Small.Order {
		y := ds.Small.Channels[name]
		out[name] = seriesJSON{X: ds.Small.X, Y: y}
	}
	writeJSON(w, out)
}

type datasetNameRequest struct {
	DatasetID string `json:"dataset_id"`
	Name      string `json:"name"`
}

// handleDatasetName renames a dataset's display name.
func (s *Server) handleDatasetName(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, errorEnvelope("method not allowed"))
		return
	}
	var req datasetNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, errorEnvelope("invalid request body"))
		return
	}
	if err := s.reg.Rename(req.DatasetID, req.Name); err != nil {
		writeJSON(w, errorEnvelope(err.Error()))
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

type alignDatasetsRequest struct {
	DatasetIDs         []string    `json:"dataset_ids"`
	ChannelID          string      `json:"channel_id"`
	ReferenceDatasetID string      `json:"reference_dataset_id"`
	CutRange           *[2]float64 `json:"cut_range"`
	TargetPoints       int         `json:"target_points"`
}

// handleAlignDatasets computes cross-correlation alignment offsets
// between multi-channel datasets on a shared channel.
func (s *Server) handleAlignDatasets(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { metrics.AlignDuration.WithLabelValues("dataset").Observe(time.Since(start).Seconds()) }()

	if r.Method != http.MethodPost {
		writeJSON(w, errorEnvelope("method not allowed"))
		return
	}
	var req alignDatasetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, errorEnvelope("invalid request body"))
		return
	}

	if len(req.DatasetIDs) < 2 {
		writeJSON(w, map[string]any{"error": true, "offsets": map[string]float64{}})
		return
	}

	datasets := make([]*core.Dataset, 0, len(req.DatasetIDs))
	for _, id := range req.DatasetIDs {
		if ds, ok := s.reg.Get(id); ok {
			datasets = append(datasets, ds)
		}
	}
	if len(datasets) < 2 {
		writeJSON(w, map[string]any{"error": true, "offsets": map[string]float64{}})
		return
	}

	if req.TargetPoints <= 0 {
		req.TargetPoints = s.cfg.DefaultTargetPoints
	}

	cutStart, cutEnd := 0.0, 1e10
	if req.CutRange != nil {
		cutStart, cutEnd = req.CutRange[0], req.CutRange[1]
	}

	offsets, err := align.Dataset(datasets, req.ChannelID, req.ReferenceDatasetID, cutStart, cutEnd, req.TargetPoints)
	if err != nil {
		writeJSON(w, map[string]any{"error": true, "message": err.Error(), "offsets": map[string]float64{}})
		return
	}
	writeJSON(w, map[string]any{"offsets": offsets})
}
