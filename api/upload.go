package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"Wavecache/ingest"
	"Wavecache/internal/logger"
	"Wavecache/internal/metrics"
)

// handleUpload streams the uploaded file to disk in UploadChunk-sized
// reads, rejecting the transfer once it exceeds MaxUploadBytes, then
// ingests it either as a multi-channel dataset or into the legacy flat
// map, depending on the multi_channel_mode form field.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, errorEnvelope("method not allowed"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, errorEnvelope("missing file field"))
		return
	}
	defer file.Close()
	s.spoolAndIngest(w, r, file, header.Filename)
}

func (s *Server) spoolAndIngest(w http.ResponseWriter, r *http.Request, file io.Reader, filename string) {
	multiChannel, _ := strconv.ParseBool(r.FormValue("multi_channel_mode"))

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		writeJSON(w, errorEnvelope("cannot create upload directory"))
		return
	}

	dest := filepath.Join(s.cfg.UploadDir, filepath.Base(filename))
	out, err := os.Create(dest)
	if err != nil {
		writeJSON(w, errorEnvelope("cannot create destination file"))
		return
	}

	written, err := copyChunked(out, file, s.cfg.UploadChunk, s.cfg.MaxUploadBytes)
	closeErr := out.Close()
	if err != nil {
		os.Remove(dest)
		writeJSON(w, errorEnvelope(err.Error()))
		return
	}
	if closeErr != nil {
		os.Remove(dest)
		writeJSON(w, errorEnvelope("failed to finalize upload"))
		return
	}
	logger.Info("api: spooled %s (%d bytes, multi_channel=%v)", dest, written, multiChannel)

	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	start := time.Now()

	if multiChannel {
		ds, err := s.reg.AddMultiChannel(dest, stem)
		metrics.IngestDuration.WithLabelValues(sizeClassLabel(ds)).Observe(time.Since(start).Seconds())
		if err != nil {
			if errors.Is(err, ingest.ErrFormatMismatch) {
				// The spooled file stays on disk for debugging.
				writeJSON(w, map[string]any{"error": true, "format_error": true, "message": err.Error()})
				return
			}
			writeJSON(w, errorEnvelope(err.Error()))
			return
		}
		metrics.ActiveDatasets.Set(float64(len(s.reg.All())))
		writeJSON(w, datasetMetadataJSON(ds))
		return
	}

	if err := s.reg.AddLegacy(dest, stem); err != nil {
		metrics.IngestDuration.WithLabelValues("small").Observe(time.Since(start).Seconds())
		writeJSON(w, errorEnvelope(err.Error()))
		return
	}
	metrics.IngestDuration.WithLabelValues("small").Observe(time.Since(start).Seconds())
	writeJSON(w, legacyAggregateMetadataJSON(s.reg))
}

// copyChunked copies src to dst in chunkSize reads, returning an error
// once more than maxBytes total have been read; the chunk that crosses the
// limit is not written.
func copyChunked(dst io.Writer, src io.Reader, chunkSize int, maxBytes int64) (int64, error) {
	buf := make([]byte, chunkSize)
	var total int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			total += int64(n)
			if total > maxBytes {
				return total, fmt.Errorf("upload exceeds maximum size of %d bytes", maxBytes)
			}
			if _, err := dst.Write(buf[:n]); err != nil {
				return total, err
			}
		}
		if readErr == io.EOF {
			return total, nil
		}
		if readErr != nil {
			return total, readErr
		}
	}
}

// handleClear clears the registry, deletes cache files it owned, and
// deletes every uploaded .csv file in the upload directory, returning the
// list of deleted filenames.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, errorEnvelope("method not allowed"))
		return
	}

	if err := s.reg.Clear(); err != nil {
		writeJSON(w, errorEnvelope(err.Error()))
		return
	}
	metrics.ActiveDatasets.Set(0)

	var deleted []string
	entries, err := os.ReadDir(s.cfg.UploadDir)
	if err == nil {
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != ".csv" {
				continue
			}
			path := filepath.Join(s.cfg.UploadDir, e.Name())
			if err := os.Remove(path); err == nil {
				deleted = append(deleted, e.Name())
			}
		}
	}

	writeJSON(w, map[string]any{"deleted": deleted})
}
