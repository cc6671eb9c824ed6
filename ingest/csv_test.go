package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestParseSingleColumnNoHeader(t *testing.T) {
	path := writeTemp(t, "1.0\n2.0\n3.0\n")
	pf, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if pf.HasHeader {
		t.Fatalf("expected no header")
	}
	if !pf.SingleColumn {
		t.Fatalf("expected single column classification")
	}
	if len(pf.Columns) != 1 {
		t.Fatalf("expected 1 column, got %d", len(pf.Columns))
	}
	col := pf.Columns[0]
	if len(col.X) != 3 || col.X[0] != 0 || col.Y[0] != 1.0 {
		t.Fatalf("unexpected column: %+v", col)
	}
}

func TestParseMultiColumnWithTimeHeader(t *testing.T) {
	path := writeTemp(t, "time,a,b\n0,10,100\n1,20,200\n2,30,300\n")
	pf, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if !pf.HasHeader || !pf.HasTimeCol {
		t.Fatalf("expected header with time column")
	}
	if len(pf.Columns) != 2 {
		t.Fatalf("expected 2 non-time columns, got %d", len(pf.Columns))
	}
	for _, c := range pf.Columns {
		if len(c.X) != 3 {
			t.Fatalf("column %s expected 3 rows, got %d", c.Name, len(c.X))
		}
	}
	if pf.Columns[0].Y[1] != 20 {
		t.Fatalf("unexpected value: %v", pf.Columns[0].Y)
	}
}

func TestParseSkipsRowMissingTime(t *testing.T) {
	path := writeTemp(t, "time,a\n0,1\n,2\n2,3\n")
	pf, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	col := pf.Columns[0]
	if len(col.X) != 2 {
		t.Fatalf("expected 2 rows after skipping missing time, got %d", len(col.X))
	}
	if col.X[0] != 0 || col.X[1] != 2 {
		t.Fatalf("unexpected x values: %v", col.X)
	}
}

func TestParseSkipsMissingCellOnlyForThatColumn(t *testing.T) {
	path := writeTemp(t, "time,a,b\n0,1,10\n1,,20\n2,3,30\n")
	pf, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	var a, b Column
	for _, c := range pf.Columns {
		switch c.Name {
		case "a":
			a = c
		case "b":
			b = c
		}
	}
	if len(a.Y) != 2 {
		t.Fatalf("expected column a to have 2 values, got %d", len(a.Y))
	}
	if len(b.Y) != 3 {
		t.Fatalf("expected column b to have 3 values, got %d", len(b.Y))
	}
}

func TestParseNonNumericCellFails(t *testing.T) {
	path := writeTemp(t, "time,a\n0,x\n")
	if _, err := ParseFile(path); err == nil {
		t.Fatalf("expected parse error for non-numeric cell")
	}
}

func TestValidateMultiChannelHeaderMismatch(t *testing.T) {
	if err := ValidateMultiChannelHeader([]string{"a", "b"}); err != ErrFormatMismatch {
		t.Fatalf("expected ErrFormatMismatch, got %v", err)
	}
}
