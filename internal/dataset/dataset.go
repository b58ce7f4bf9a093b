package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/example/bridgetwin/internal/telemetry"
)

const (
	// DefaultStep is the spacing of the synthetic time axis.
	DefaultStep = 90 * time.Second
	// DefaultSpan is how far back the synthetic time axis starts.
	DefaultSpan = 24 * time.Hour
	// DefaultCriticalRatio is the per-row probability of a critical reading.
	DefaultCriticalRatio = 0.05
)

// ErrDatasetMissing is returned when the dataset file does not exist.
var ErrDatasetMissing = errors.New("dataset not found")

// Builder produces a labelled historical dataset from the telemetry generator.
type Builder struct {
	Generator     *telemetry.Generator
	Start         time.Time
	Step          time.Duration
	CriticalRatio float64
}

// NewBuilder returns a builder with the default time axis starting 24h before now.
func NewBuilder(gen *telemetry.Generator, now time.Time) *Builder {
	return &Builder{
		Generator:     gen,
		Start:         now.Add(-DefaultSpan),
		Step:          DefaultStep,
		CriticalRatio: DefaultCriticalRatio,
	}
}

// Build draws n records, choosing the scenario of each independently and
// overwriting timestamps with an evenly spaced axis.
func (b *Builder) Build(n int) []telemetry.TelemetryRecord {
	if n <= 0 {
		return nil
	}

	records := make([]telemetry.TelemetryRecord, 0, n)
	current := b.Start
	for i := 0; i < n; i++ {
		scenario := telemetry.ScenarioNormal
		if b.Generator.Float64() < b.CriticalRatio {
			scenario = telemetry.ScenarioCritical
		}

		row := b.Generator.Generate(string(scenario), "")
		row.Timestamp = current.Format(telemetry.TimestampLayout)
		records = append(records, row)

		current = current.Add(b.Step)
	}
	return records
}

// WriteCSV writes the records with a header row, replacing any existing file.
func WriteCSV(path string, records []telemetry.TelemetryRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	defer f.Close()

	if err := Encode(f, records); err != nil {
		return err
	}
	return f.Close()
}

// Encode writes records as CSV to w.
func Encode(w io.Writer, records []telemetry.TelemetryRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(telemetry.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		if err := cw.Write(r.CSVRow()); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV loads a dataset written by WriteCSV.
func ReadCSV(path string) ([]telemetry.TelemetryRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s: %w", ErrDatasetMissing, path, err)
		}
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}

// Decode parses CSV produced by Encode. The header row must match telemetry.Columns.
func Decode(r io.Reader) ([]telemetry.TelemetryRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(telemetry.Columns)

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("dataset is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range telemetry.Columns {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected column %d: expected %q, got %q", i, col, header[i])
		}
	}

	var records []telemetry.TelemetryRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		rec, err := telemetry.ParseCSVRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
