// Package cache implements the columnar cache: channel arrays materialized
// to fixed-width binary files, keyed by source-file identity, so repeated
// interactive queries over a large recording never re-parse its CSV.
package cache

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"Wavecache/core"
	"Wavecache/ingest"
	"Wavecache/internal/logger"
)

// FileName returns the canonical on-disk name for one column of a cache
// entry: "<stem>_<channel|time>_<key>.bin".
func FileName(cacheDir, stem, channel, key string) string {
	return filepath.Join(cacheDir, fmt.Sprintf("%s_%s_%s.bin", stem, channel, key))
}

// ExpectedFiles returns every file a complete multi-channel cache entry
// must have: one for time, one per channel.
func ExpectedFiles(cacheDir, stem, key string) []string {
	files := make([]string, 0, core.MultiChannelCount+1)
	files = append(files, FileName(cacheDir, stem, "time", key))
	for i := 1; i <= core.MultiChannelCount; i++ {
		files = append(files, FileName(cacheDir, stem, core.MultiChannelName(i), key))
	}
	return files
}

// IsComplete reports whether every expected file for (stem, key) exists.
// The filesystem is the source of truth; callers that maintain an
// accelerating index must still fall back to this check on any doubt.
func IsComplete(cacheDir, stem, key string) bool {
	for _, f := range ExpectedFiles(cacheDir, stem, key) {
		if _, err := os.Stat(f); err != nil {
			return false
		}
	}
	return true
}

// Materialize streams path (a validated 17-column multi-channel CSV) and
// writes its time and channel columns to cacheDir under key. If the entry
// is already complete it is reused untouched (idempotence). Writes go to a
// temporary sibling file and are renamed into place only on success, so a
// cancelled or failed materialization never leaves a half-written file
// visible under the canonical name.
func Materialize(cacheDir, path, stem, key string) (rows int, err error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return 0, fmt.Errorf("cache: create cache dir: %w", err)
	}

	if IsComplete(cacheDir, stem, key) {
		logger.Debug("cache: reusing existing entry for %s (key %s)", stem, key)
		return rowCountFrom(FileName(cacheDir, stem, "time", key))
	}

	writers, err := newColumnWriters(cacheDir, stem, key)
	if err != nil {
		return 0, err
	}
	defer writers.cleanup()

	total, err := ingest.StreamMultiChannel(path, 50000, func(c ingest.Chunk) error {
		if err := writers.time.writeFloats(c.Time); err != nil {
			return err
		}
		for i := 0; i < core.MultiChannelCount; i++ {
			if err := writers.channels[i].writeFloats(c.Channels[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("cache: materialize %s: %w", stem, err)
	}

	if err := writers.commit(); err != nil {
		return 0, err
	}
	return total, nil
}

// LoadChannel reads one column of a cache entry in full.
func LoadChannel(cacheDir, stem, channel, key string) ([]float64, error) {
	return readFloats(FileName(cacheDir, stem, channel, key))
}

// LoadTime reads the time column of a cache entry in full.
func LoadTime(cacheDir, stem, key string) ([]float64, error) {
	return readFloats(FileName(cacheDir, stem, "time", key))
}

// RemoveEntry deletes every file belonging to (stem, key), ignoring files
// that are already absent.
func RemoveEntry(cacheDir, stem, key string) error {
	for _, f := range ExpectedFiles(cacheDir, stem, key) {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("cache: remove %s: %w", f, err)
		}
	}
	return nil
}

func rowCountFrom(timeFile string) (int, error) {
	info, err := os.Stat(timeFile)
	if err != nil {
		return 0, fmt.Errorf("cache: stat %s: %w", timeFile, err)
	}
	return int(info.Size() / 4), nil
}

func readFloats(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cache: stat %s: %w", path, err)
	}
	n := int(info.Size() / 4)
	out := make([]float64, n)

	br := bufio.NewReaderSize(f, 1<<20)
	buf := make([]byte, 4)
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("cache: read %s: %w", path, err)
		}
		bits := binary.LittleEndian.Uint32(buf)
		out[i] = float64(math.Float32frombits(bits))
	}
	return out, nil
}

// columnWriter streams float64 values to a temporary file as 32-bit
// little-endian floats, to be renamed into place on commit.
type columnWriter struct {
	tmpPath   string
	finalPath string
	f         *os.File
	bw        *bufio.Writer
}

func newColumnWriter(finalPath string) (*columnWriter, error) {
	f, err := os.CreateTemp(filepath.Dir(finalPath), filepath.Base(finalPath)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("cache: create temp file for %s: %w", finalPath, err)
	}
	tmpPath := f.Name()
	return &columnWriter{tmpPath: tmpPath, finalPath: finalPath, f: f, bw: bufio.NewWriterSize(f, 1<<20)}, nil
}

func (w *columnWriter) writeFloats(values []float64) error {
	buf := make([]byte, 4)
	for _, v := range values {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
		if _, err := w.bw.Write(buf); err != nil {
			return fmt.Errorf("cache: write %s: %w", w.tmpPath, err)
		}
	}
	return nil
}

func (w *columnWriter) commit() error {
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("cache: flush %s: %w", w.tmpPath, err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("cache: close %s: %w", w.tmpPath, err)
	}
	if err := os.Rename(w.tmpPath, w.finalPath); err != nil {
		return fmt.Errorf("cache: rename %s to %s: %w", w.tmpPath, w.finalPath, err)
	}
	return nil
}

func (w *columnWriter) abandon() {
	w.f.Close()
	os.Remove(w.tmpPath)
}

type columnWriters struct {
	time     *columnWriter
	channels [core.MultiChannelCount]*columnWriter
	done     bool
}

func newColumnWriters(cacheDir, stem, key string) (*columnWriters, error) {
	cw := &columnWriters{}
	var err error
	cw.time, err = newColumnWriter(FileName(cacheDir, stem, "time", key))
	if err != nil {
		return nil, err
	}
	for i := 1; i <= core.MultiChannelCount; i++ {
		cw.channels[i-1], err = newColumnWriter(FileName(cacheDir, stem, core.MultiChannelName(i), key))
		if err != nil {
			cw.cleanup()
			return nil, err
		}
	}
	return cw, nil
}

func (cw *columnWriters) commit() error {
	if err := cw.time.commit(); err != nil {
		return err
	}
	for _, c := range cw.channels {
		if err := c.commit(); err != nil {
			return err
		}
	}
	cw.done = true
	return nil
}

func (cw *columnWriters) cleanup() {
	if cw.done {
		return
	}
	if cw.time != nil {
		cw.time.abandon()
	}
	for _, c := range cw.channels {
		if c != nil {
			c.abandon()
		}
	}
}
