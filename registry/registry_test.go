package registry

import (
	"os"
	"path/filepath"
	"testing"

	"Wavecache/core"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func multiChannelCSV(rows int) string {
	header := core.MultiChannelHeader()
	out := ""
	for i, h := range header {
		if i > 0 {
			out += ","
		}
		out += h
	}
	out += "\n"
	for r := 0; r < rows; r++ {
		out += itoa(r)
		for c := 1; c <= core.MultiChannelCount; c++ {
			out += "," + itoa(r+c)
		}
		out += "\n"
	}
	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func TestAddMultiChannelSmall(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "run.csv")
	writeFile(t, src, multiChannelCSV(100))

	reg := New(filepath.Join(dir, "cache"), nil, 0)
	ds, err := reg.AddMultiChannel(src, "run")
	if err != nil {
		t.Fatalf("AddMultiChannel: %v", err)
	}
	if ds.SizeClass != core.Small {
		t.Fatalf("expected small dataset, got %v", ds.SizeClass)
	}
	if ds.Metadata.TotalRows != 100 {
		t.Fatalf("expected 100 rows, got %d", ds.Metadata.TotalRows)
	}

	got, ok := reg.Get("")
	if !ok || got.ID != ds.ID {
		t.Fatalf("expected most-recently-added resolution to find %s", ds.ID)
	}
}

func TestAddMultiChannelRejectsBadHeader(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.csv")
	writeFile(t, src, "a,b,c\n1,2,3\n")

	reg := New(filepath.Join(dir, "cache"), nil, 0)
	if _, err := reg.AddMultiChannel(src, "bad"); err == nil {
		t.Fatalf("expected format mismatch error")
	}
}

func TestClearRemovesDatasets(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "run.csv")
	writeFile(t, src, multiChannelCSV(5))

	reg := New(filepath.Join(dir, "cache"), nil, 0)
	if _, err := reg.AddMultiChannel(src, "run"); err != nil {
		t.Fatalf("AddMultiChannel: %v", err)
	}
	if err := reg.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(reg.All()) != 0 {
		t.Fatalf("expected empty registry after clear")
	}
	if _, ok := reg.Get(""); ok {
		t.Fatalf("expected no dataset resolvable after clear")
	}
}

func TestUITablesRoundTrip(t *testing.T) {
	reg := New(t.TempDir(), nil, 0)
	reg.SetChannelName("AI2-01", "Pressure")
	reg.SetChannelOffset("AI2-01", 1.5)
	reg.SetChannelCutRange("AI2-01", 0, 10)

	if reg.ChannelNames()["AI2-01"] != "Pressure" {
		t.Fatalf("channel name not stored")
	}
	if reg.ChannelOffsets()["AI2-01"] != 1.5 {
		t.Fatalf("channel offset not stored")
	}
	if cr := reg.ChannelCutRanges()["AI2-01"]; cr != [2]float64{0, 10} {
		t.Fatalf("channel cut range not stored: %v", cr)
	}
}
