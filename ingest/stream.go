package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"Wavecache/core"
)

// Chunk is one fixed-row-count slab of a streamed multi-channel file: one
// time column plus core.MultiChannelCount analog channels, in AI2-01 order.
type Chunk struct {
	Time     []float64
	Channels [core.MultiChannelCount][]float64
}

// StreamMultiChannel validates the 17-column multi-channel header, then
// reads path in chunkRows-row slabs, invoking fn once per slab. It returns
// the total row count read. The header is validated before any data row is
// read, so a format mismatch is reported without touching the cache.
func StreamMultiChannel(path string, chunkRows int, fn func(Chunk) error) (int, error) {
	if chunkRows <= 0 {
		chunkRows = 50000
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReaderSize(f, 1<<20))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := readNonEmpty(r)
	if err != nil {
		return 0, fmt.Errorf("ingest: read header of %s: %w", path, err)
	}
	if err := ValidateMultiChannelHeader(header); err != nil {
		return 0, err
	}

	var chunk Chunk
	rowsInChunk := 0
	total := 0

	flush := func() error {
		if rowsInChunk == 0 {
			return nil
		}
		if err := fn(chunk); err != nil {
			return err
		}
		chunk = Chunk{}
		rowsInChunk = 0
		return nil
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("ingest: read %s: %w", path, err)
		}
		if isEmptyRow(rec) {
			continue
		}
		if len(rec) < core.MultiChannelCount+1 {
			return total, fmt.Errorf("%w: row %d has %d columns", ErrFormatMismatch, total, len(rec))
		}

		t, err := parseCell(rec[0], total, "time[s]")
		if err != nil {
			return total, err
		}
		chunk.Time = append(chunk.Time, t)
		for i := 0; i < core.MultiChannelCount; i++ {
			v, err := parseCell(rec[i+1], total, core.MultiChannelName(i+1))
			if err != nil {
				return total, err
			}
			chunk.Channels[i] = append(chunk.Channels[i], v)
		}

		rowsInChunk++
		total++
		if rowsInChunk >= chunkRows {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

func parseCell(cell string, row int, column string) (float64, error) {
	cell = strings.TrimSpace(cell)
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: row %d column %s value %q", ErrParseCell, row, column, cell)
	}
	return v, nil
}

func readNonEmpty(r *csv.Reader) ([]string, error) {
	for {
		rec, err := r.Read()
		if err != nil {
			return nil, err
		}
		if isEmptyRow(rec) {
			continue
		}
		if len(rec) > 0 {
			stripBOM(&rec[0])
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		return rec, nil
	}
}
