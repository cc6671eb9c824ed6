package query

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"Wavecache/cache"
	"Wavecache/core"
)

func smallDataset(n int) *core.Dataset {
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
		y[i] = float64(i) * 2
	}
	d := core.NewSmallData()
	d.X = x
	d.Order = []string{"ch"}
	d.Channels["ch"] = y
	return &core.Dataset{SizeClass: core.Small, Small: d, Metadata: core.Metadata{TotalRows: n}}
}

func TestByIndexDefaults(t *testing.T) {
	ds := smallDataset(100)
	s, err := ByIndex(ds, "ch", 0, -1, 5000)
	if err != nil {
		t.Fatalf("ByIndex: %v", err)
	}
	if s.Len() != 100 {
		t.Fatalf("expected 100 points, got %d", s.Len())
	}
}

func TestByIndexClipsEnd(t *testing.T) {
	ds := smallDataset(10)
	s, err := ByIndex(ds, "ch", 0, 1000, 5000)
	if err != nil {
		t.Fatalf("ByIndex: %v", err)
	}
	if s.Len() != 10 {
		t.Fatalf("expected clipped length 10, got %d", s.Len())
	}
}

func TestByIndexEmptyWhenStartAfterEnd(t *testing.T) {
	ds := smallDataset(10)
	s, err := ByIndex(ds, "ch", 8, 3, 5000)
	if err != nil {
		t.Fatalf("ByIndex: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty series, got %d", s.Len())
	}
}

func TestByTimeBinarySearch(t *testing.T) {
	ds := smallDataset(20)
	s, err := ByTime(ds, "ch", 5, 10, 5000)
	if err != nil {
		t.Fatalf("ByTime: %v", err)
	}
	if s.Len() != 6 {
		t.Fatalf("expected 6 points in [5,10], got %d", s.Len())
	}
	if s.X[0] != 5 || s.X[s.Len()-1] != 10 {
		t.Fatalf("unexpected window: %v", s.X)
	}
}

func TestByIndexUnknownChannel(t *testing.T) {
	ds := smallDataset(10)
	if _, err := ByIndex(ds, "missing", 0, -1, 5000); err != ErrChannelNotFound {
		t.Fatalf("expected ErrChannelNotFound, got %v", err)
	}
}

func TestByIndexDownsamples(t *testing.T) {
	ds := smallDataset(10000)
	s, err := ByIndex(ds, "ch", 0, -1, 500)
	if err != nil {
		t.Fatalf("ByIndex: %v", err)
	}
	if s.Len() != 500 {
		t.Fatalf("expected 500 points after downsampling, got %d", s.Len())
	}
}

func largeDataset(t *testing.T, rows int) *core.Dataset {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "run.csv")

	f, err := os.Create(src)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	header := core.MultiChannelHeader()
	for i, h := range header {
		if i > 0 {
			f.WriteString(",")
		}
		f.WriteString(h)
	}
	f.WriteString("\n")
	for r := 0; r < rows; r++ {
		f.WriteString(strconv.Itoa(r))
		for c := 1; c <= core.MultiChannelCount; c++ {
			f.WriteString("," + strconv.Itoa(r+c))
		}
		f.WriteString("\n")
	}
	f.Close()

	key, err := cache.Key(src)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	cacheDir := filepath.Join(dir, "cache")
	if _, err := cache.Materialize(cacheDir, src, "run", key); err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	channels := make([]string, core.MultiChannelCount)
	for i := 1; i <= core.MultiChannelCount; i++ {
		channels[i-1] = core.MultiChannelName(i)
	}
	return &core.Dataset{
		SizeClass: core.Large,
		Large:     &core.LargeHandle{CacheDir: cacheDir, Stem: "run", Key: key, Channels: channels},
		Metadata:  core.Metadata{TotalRows: rows, Channels: channels, IsLargeFile: true},
	}
}

func TestByIndexCacheBacked(t *testing.T) {
	ds := largeDataset(t, 2000)
	s, err := ByIndex(ds, "AI2-03", 0, -1, 500)
	if err != nil {
		t.Fatalf("ByIndex: %v", err)
	}
	if s.Len() != 500 {
		t.Fatalf("expected 500 points, got %d", s.Len())
	}
	if s.X[0] != 0 || s.X[s.Len()-1] != 1999 {
		t.Fatalf("boundary points not preserved: first %v last %v", s.X[0], s.X[s.Len()-1])
	}
}

func TestByTimeCacheBacked(t *testing.T) {
	ds := largeDataset(t, 100)
	s, err := ByTime(ds, "AI2-01", 10, 19, 5000)
	if err != nil {
		t.Fatalf("ByTime: %v", err)
	}
	if s.Len() != 10 {
		t.Fatalf("expected 10 points in [10,19], got %d", s.Len())
	}
	if s.Y[0] != 11 {
		t.Fatalf("unexpected first value: %v", s.Y[0])
	}
}
