// Package ingest implements the CSV parser: header detection, time-column
// detection, and the single/multi-column/multi-channel classification rules.
package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"Wavecache/core"
)

// ErrFormatMismatch signals a multi-channel-mode file whose header does not
// match the required 17-column layout.
var ErrFormatMismatch = errors.New("ingest: header does not match multi-channel format")

// ErrParseCell signals a present cell that does not parse as a number.
var ErrParseCell = errors.New("ingest: non-numeric cell")

var timeColumnNames = map[string]bool{
	"time": true, "t": true, "timestamp": true, "time[s]": true,
}

// Column is one parsed column: its own (x, y) pairs, independent of any
// other column's length (a row missing only this column's cell is simply
// absent from it, per the row-skip rule).
type Column struct {
	Name string
	X    []float64
	Y    []float64
}

// ParsedFile is the result of parsing a CSV outside multi-channel mode.
type ParsedFile struct {
	HasHeader    bool
	HasTimeCol   bool
	SingleColumn bool
	Columns      []Column
}

// ParseFile reads path and classifies it per the single-column /
// multi-column rules. It does not apply the file-stem naming convention;
// callers combine Columns[i].Name with the file stem as needed.
func ParseFile(path string) (*ParsedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read %s: %w", path, err)
		}
		if isEmptyRow(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return &ParsedFile{}, nil
	}

	stripBOM(&rows[0][0])
	for i := range rows[0] {
		rows[0][i] = strings.TrimSpace(rows[0][i])
	}

	hasHeader := !rowIsAllNumeric(rows[0])

	var header []string
	dataRows := rows
	if hasHeader {
		header = rows[0]
		dataRows = rows[1:]
	} else {
		header = make([]string, len(rows[0]))
		for i := range header {
			header[i] = core.SyntheticColumnName(i)
		}
	}

	timeIdx := -1
	if hasHeader {
		for i, h := range header {
			if timeColumnNames[strings.ToLower(strings.TrimSpace(h))] {
				timeIdx = i
				break
			}
		}
	}

	pf := &ParsedFile{HasHeader: hasHeader, HasTimeCol: timeIdx >= 0}

	nonTimeIdx := make([]int, 0, len(header))
	for i := range header {
		if i != timeIdx {
			nonTimeIdx = append(nonTimeIdx, i)
		}
	}
	pf.SingleColumn = len(nonTimeIdx) == 1 && timeIdx < 0

	cols := make([]Column, len(nonTimeIdx))
	for k, i := range nonTimeIdx {
		cols[k].Name = header[i]
	}

	for rowN, rec := range dataRows {
		var x float64
		if timeIdx >= 0 {
			cell := cellAt(rec, timeIdx)
			if strings.TrimSpace(cell) == "" {
				continue // missing time cell: skip the whole row
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d time column %q", ErrParseCell, rowN, cell)
			}
			x = v
		} else {
			x = float64(rowN)
		}

		for k, i := range nonTimeIdx {
			cell := cellAt(rec, i)
			if strings.TrimSpace(cell) == "" {
				continue // missing cell: skip only this column for this row
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %q", ErrParseCell, rowN, cols[k].Name)
			}
			cols[k].X = append(cols[k].X, x)
			cols[k].Y = append(cols[k].Y, v)
		}
	}

	pf.Columns = cols
	return pf, nil
}

// ValidateMultiChannelHeader reports whether header matches the required
// exact 17-column multi-channel layout, after trimming and BOM-stripping
// the first cell.
func ValidateMultiChannelHeader(header []string) error {
	want := core.MultiChannelHeader()
	if len(header) != len(want) {
		return ErrFormatMismatch
	}
	got := make([]string, len(header))
	copy(got, header)
	if len(got) > 0 {
		stripBOM(&got[0])
	}
	for i := range got {
		got[i] = strings.TrimSpace(got[i])
		if got[i] != want[i] {
			return ErrFormatMismatch
		}
	}
	return nil
}

// ReadHeader reads and returns the first non-empty row of path, trimmed and
// BOM-stripped, without parsing the rest of the file.
func ReadHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil, fmt.Errorf("ingest: %s has no rows", path)
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read %s: %w", path, err)
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

func cellAt(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func isEmptyRow(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func rowIsAllNumeric(rec []string) bool {
	for _, c := range rec {
		c = strings.TrimSpace(c)
		if c == "" {
			return false
		}
		if _, err := strconv.ParseFloat(c, 64); err != nil {
			return false
		}
	}
	return true
}

func stripBOM(s *string) {
	const bom = "\uFEFF"
	*s = strings.TrimPrefix(*s, bom)
}
