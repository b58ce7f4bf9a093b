package dataset

import (
	"bytes"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/bridgetwin/internal/telemetry"
	"github.com/example/bridgetwin/internal/testutils"
)

func newTestBuilder(seed int64) *Builder {
	gen := telemetry.NewGenerator(rand.NewSource(seed))
	return NewBuilder(gen, time.Date(2025, 7, 18, 12, 0, 0, 0, time.UTC))
}

func TestBuild(t *testing.T) {
	records := newTestBuilder(42).Build(1000)

	t.Run("row count", func(t *testing.T) {
		if len(records) != 1000 {
			t.Fatalf("Expected 1000 rows, got %d", len(records))
		}
	})

	t.Run("timestamps advance by 90s", func(t *testing.T) {
		start := time.Date(2025, 7, 17, 12, 0, 0, 0, time.UTC)
		var prev time.Time
		for i, r := range records {
			ts, err := time.Parse(telemetry.TimestampLayout, r.Timestamp)
			if err != nil {
				t.Fatalf("Row %d: bad timestamp %q: %v", i, r.Timestamp, err)
			}
			if i == 0 {
				if !ts.Equal(start) {
					t.Errorf("Expected first timestamp %v, got %v", start, ts)
				}
			} else if ts.Sub(prev) != 90*time.Second {
				t.Fatalf("Row %d: expected 90s step, got %v", i, ts.Sub(prev))
			}
			prev = ts
		}
	})

	t.Run("critical fraction near 5%", func(t *testing.T) {
		critical := 0
		for _, r := range records {
			if r.Scenario == telemetry.ScenarioCritical {
				critical++
			}
		}
		// mean 50, sd ~6.9; a 4-sigma band
		if critical < 22 || critical > 78 {
			t.Errorf("Expected roughly 50 critical rows, got %d", critical)
		}
	})

	t.Run("rows satisfy generator contract", func(t *testing.T) {
		for i, r := range records {
			k := telemetry.StressCoefficient(r.Scenario)
			if r.StressMPa != telemetry.Round(r.Strain*k, 2) {
				t.Fatalf("Row %d: stress %v does not match strain %v", i, r.StressMPa, r.Strain)
			}
		}
	})
}

func TestBuildNonPositive(t *testing.T) {
	if got := newTestBuilder(1).Build(0); len(got) != 0 {
		t.Errorf("Expected no rows, got %d", len(got))
	}
}

func TestWriteReadCSV(t *testing.T) {
	dir := testutils.TempDir(t, "dataset")
	path := filepath.Join(dir, "bridge_data.csv")

	records := newTestBuilder(7).Build(50)
	if err := WriteCSV(path, records); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	content := testutils.ReadTestFile(t, path)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 51 {
		t.Errorf("Expected header plus 50 rows, got %d lines", len(lines))
	}
	if lines[0] != strings.Join(telemetry.Columns, ",") {
		t.Errorf("Unexpected header: %s", lines[0])
	}

	loaded, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(loaded) != len(records) {
		t.Fatalf("Expected %d rows, got %d", len(records), len(loaded))
	}
	for i := range records {
		if loaded[i] != records[i] {
			t.Errorf("Row %d mismatch: expected %+v, got %+v", i, records[i], loaded[i])
		}
	}
}

func TestWriteCSVOverwrites(t *testing.T) {
	dir := testutils.TempDir(t, "dataset")
	path := filepath.Join(dir, "bridge_data.csv")

	if err := WriteCSV(path, newTestBuilder(1).Build(30)); err != nil {
		t.Fatalf("first WriteCSV failed: %v", err)
	}
	if err := WriteCSV(path, newTestBuilder(2).Build(5)); err != nil {
		t.Fatalf("second WriteCSV failed: %v", err)
	}

	loaded, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(loaded) != 5 {
		t.Errorf("Expected file to be replaced with 5 rows, got %d", len(loaded))
	}
}

func TestReadCSVMissing(t *testing.T) {
	_, err := ReadCSV(filepath.Join(testutils.TempDir(t, "dataset"), "absent.csv"))
	if !errors.Is(err, ErrDatasetMissing) {
		t.Errorf("Expected ErrDatasetMissing, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected wrapped os.ErrNotExist, got %v", err)
	}
}

func TestDecodeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong header", strings.Repeat("x,", len(telemetry.Columns)-1) + "x\n"},
		{"bad number", strings.Join(telemetry.Columns, ",") + "\n" +
			"2025-01-01T00:00:00Z,Domlur Flyover,abc,0.1,0.1,50,1.5,0.1,99,None (Safe),None,1000,normal\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.input)); err == nil {
				t.Error("Expected error but got nil")
			}
		})
	}
}

func TestEncodeHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, nil); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	records, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no rows, got %d", len(records))
	}
}

func TestReadCSVFixture(t *testing.T) {
	path := testutils.CreateTestCSVFile(t, "")
	if !testutils.FileExists(path) {
		t.Fatalf("Expected fixture at %s", path)
	}

	records, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(records))
	}
	if records[0].Label() != 0 || records[1].Label() != 1 {
		t.Errorf("Expected labels 0,1, got %d,%d", records[0].Label(), records[1].Label())
	}
	if records[1].TrafficLoad != 6120 || records[1].DefectType != telemetry.CriticalDefectType {
		t.Errorf("Unexpected critical row %+v", records[1])
	}
}
