package cache

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"Wavecache/core"
)

func writeMultiChannelCSV(t *testing.T, path string, rows int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()

	header := core.MultiChannelHeader()
	for i, h := range header {
		if i > 0 {
			f.WriteString(",")
		}
		f.WriteString(h)
	}
	f.WriteString("\n")

	for r := 0; r < rows; r++ {
		f.WriteString(formatFloat(float64(r) * 0.01))
		for c := 1; c <= core.MultiChannelCount; c++ {
			f.WriteString(",")
			f.WriteString(formatFloat(float64(r+c) * 0.1))
		}
		f.WriteString("\n")
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func TestMaterializeAndLoad(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "run1.csv")
	writeMultiChannelCSV(t, src, 250)

	key, err := Key(src)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}

	cacheDir := filepath.Join(dir, "cache")
	rows, err := Materialize(cacheDir, src, "run1", key)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if rows != 250 {
		t.Fatalf("expected 250 rows, got %d", rows)
	}
	if !IsComplete(cacheDir, "run1", key) {
		t.Fatalf("expected cache entry to be complete")
	}

	tm, err := LoadTime(cacheDir, "run1", key)
	if err != nil {
		t.Fatalf("LoadTime: %v", err)
	}
	if len(tm) != 250 {
		t.Fatalf("expected 250 time samples, got %d", len(tm))
	}

	ch, err := LoadChannel(cacheDir, "run1", core.MultiChannelName(3), key)
	if err != nil {
		t.Fatalf("LoadChannel: %v", err)
	}
	if len(ch) != 250 {
		t.Fatalf("expected 250 channel samples, got %d", len(ch))
	}
}

func TestMaterializeIdempotent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "run1.csv")
	writeMultiChannelCSV(t, src, 50)

	key, err := Key(src)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	cacheDir := filepath.Join(dir, "cache")

	if _, err := Materialize(cacheDir, src, "run1", key); err != nil {
		t.Fatalf("first Materialize: %v", err)
	}
	before, err := os.ReadFile(FileName(cacheDir, "run1", "time", key))
	if err != nil {
		t.Fatalf("read time file: %v", err)
	}

	if _, err := Materialize(cacheDir, src, "run1", key); err != nil {
		t.Fatalf("second Materialize: %v", err)
	}
	after, err := os.ReadFile(FileName(cacheDir, "run1", "time", key))
	if err != nil {
		t.Fatalf("re-read time file: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("re-materialization produced different bytes")
	}
}

func TestRemoveEntry(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "run1.csv")
	writeMultiChannelCSV(t, src, 10)

	key, _ := Key(src)
	cacheDir := filepath.Join(dir, "cache")
	if _, err := Materialize(cacheDir, src, "run1", key); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if err := RemoveEntry(cacheDir, "run1", key); err != nil {
		t.Fatalf("RemoveEntry: %v", err)
	}
	if IsComplete(cacheDir, "run1", key) {
		t.Fatalf("expected entry to be gone")
	}
}
