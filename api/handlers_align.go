package api

import (
	"encoding/json"
	"net/http"
	"time"

	"Wavecache/align"
	"Wavecache/internal/metrics"
)

type alignRequest struct {
	Groups         map[string][]string   `json:"groups"`
	CutRanges      map[string][2]float64 `json:"cut_ranges"`
	ReferenceGroup string                `json:"reference_group"`
}

// handleAlign computes hierarchical multi-file alignment over the legacy
// flat series map: intra-group offsets relative to each group's first
// member, then inter-group deltas relative to the reference group.
func (s *Server) handleAlign(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { metrics.AlignDuration.WithLabelValues("hierarchical").Observe(time.Since(start).Seconds()) }()

	if r.Method != http.MethodPost {
		writeJSON(w, errorEnvelope("method not allowed"))
		return
	}
	var req alignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, errorEnvelope("invalid request body"))
		return
	}

	legacy := s.reg.LegacySeries()
	series := make(map[string][]float64, len(legacy))
	for id, ser := range legacy {
		series[id] = ser.Y
	}

	cutRanges := make(map[string]align.CutRange, len(req.CutRanges))
	for id, cr := range req.CutRanges {
		cutRanges[id] = align.CutRange{Start: int(cr[0]), End: int(cr[1])}
	}

	offsets := align.Hierarchical(req.Groups, series, cutRanges, req.ReferenceGroup)
	writeJSON(w, map[string]any{"offsets": offsets})
}
