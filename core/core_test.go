package core

import "testing"

func TestTimeRangeOf(t *testing.T) {
	tr := TimeRangeOf([]float64{1.5, 2.5, 9.0})
	if tr.First != 1.5 || tr.Last != 9.0 {
		t.Fatalf("unexpected range: %+v", tr)
	}
	if empty := TimeRangeOf(nil); empty != (TimeRange{}) {
		t.Fatalf("expected zero-value range for empty input, got %+v", empty)
	}
}

func TestSeriesValidate(t *testing.T) {
	s := Series{X: []float64{0, 1}, Y: []float64{0, 1, 2}}
	if err := s.Validate(); err != ErrLengthMismatch {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	ok := Series{X: []float64{0, 1}, Y: []float64{10, 20}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if ok.Len() != 2 {
		t.Fatalf("expected length 2, got %d", ok.Len())
	}
}

func TestMultiChannelHeader(t *testing.T) {
	h := MultiChannelHeader()
	if len(h) != MultiChannelCount+1 {
		t.Fatalf("expected %d columns, got %d", MultiChannelCount+1, len(h))
	}
	if h[0] != "time[s]" || h[1] != "AI2-01" || h[MultiChannelCount] != "AI2-16" {
		t.Fatalf("unexpected header: %v", h)
	}
}

func TestLegacyAndSyntheticNames(t *testing.T) {
	if got := LegacyChannelName("run1", "a"); got != "run1:a" {
		t.Fatalf("unexpected legacy name: %s", got)
	}
	if got := SyntheticColumnName(3); got != "col_3" {
		t.Fatalf("unexpected synthetic name: %s", got)
	}
}
