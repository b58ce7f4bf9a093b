package telemetry

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Scenario is the ground-truth label a synthetic record is drawn under.
type Scenario string

const (
	ScenarioNormal   Scenario = "normal"
	ScenarioCritical Scenario = "critical"
)

// NormalizeScenario maps any input onto one of the two known scenarios.
// Only the exact string "critical" selects the critical band.
func NormalizeScenario(s string) Scenario {
	if s == string(ScenarioCritical) {
		return ScenarioCritical
	}
	return ScenarioNormal
}

// Locations is the fixed set of monitored sites.
var Locations = []string{
	"Silk Board Junction Flyover",
	"Hebbal Flyover Service Rd",
	"KR Puram Suspension Bridge",
	"Domlur Flyover",
	"Yeshwanthpur Railway Overbridge",
	"Madiwala Underpass",
}

// TelemetryRecord represents a single simulated sensor snapshot.
type TelemetryRecord struct {
	Timestamp        string   `json:"timestamp"`
	Location         string   `json:"location"`
	VibrationX       float64  `json:"vibration_x"`
	VibrationY       float64  `json:"vibration_y"`
	VibrationZ       float64  `json:"vibration_z"`
	Strain           float64  `json:"strain"`
	StressMPa        float64  `json:"stress_mpa"`
	Tilt             float64  `json:"tilt"`
	HealthScore      int      `json:"health_score"`
	PredictionWindow string   `json:"prediction_window"`
	DefectType       string   `json:"defect_type"`
	TrafficLoad      int      `json:"traffic_load"`
	Scenario         Scenario `json:"scenario"`
}

// Columns is the canonical column order of the dataset file.
var Columns = []string{
	"timestamp",
	"location",
	"vibration_x",
	"vibration_y",
	"vibration_z",
	"strain",
	"stress_mpa",
	"tilt",
	"health_score",
	"prediction_window",
	"defect_type",
	"traffic_load",
	"scenario",
}

// FeatureNames lists the classifier inputs in the order Features returns them.
var FeatureNames = []string{"vibration_x", "vibration_y", "vibration_z", "strain", "tilt"}

// Features returns the raw sensor axes used as classifier input.
func (r TelemetryRecord) Features() []float64 {
	return []float64{r.VibrationX, r.VibrationY, r.VibrationZ, r.Strain, r.Tilt}
}

// Label is 1 for critical records and 0 otherwise.
func (r TelemetryRecord) Label() int {
	if r.Scenario == ScenarioCritical {
		return 1
	}
	return 0
}

// MaxVibration returns the largest of the three accelerometer axes.
func (r TelemetryRecord) MaxVibration() float64 {
	return max(r.VibrationX, r.VibrationY, r.VibrationZ)
}

// CSVRow formats the record in Columns order.
func (r TelemetryRecord) CSVRow() []string {
	return []string{
		r.Timestamp,
		r.Location,
		strconv.FormatFloat(r.VibrationX, 'f', -1, 64),
		strconv.FormatFloat(r.VibrationY, 'f', -1, 64),
		strconv.FormatFloat(r.VibrationZ, 'f', -1, 64),
		strconv.FormatFloat(r.Strain, 'f', -1, 64),
		strconv.FormatFloat(r.StressMPa, 'f', -1, 64),
		strconv.FormatFloat(r.Tilt, 'f', -1, 64),
		strconv.Itoa(r.HealthScore),
		r.PredictionWindow,
		r.DefectType,
		strconv.Itoa(r.TrafficLoad),
		string(r.Scenario),
	}
}

// ParseCSVRow is the inverse of CSVRow.
func ParseCSVRow(row []string) (TelemetryRecord, error) {
	if len(row) != len(Columns) {
		return TelemetryRecord{}, fmt.Errorf("expected %d fields, got %d", len(Columns), len(row))
	}

	floats := make([]float64, 0, 6)
	for _, idx := range []int{2, 3, 4, 5, 6, 7} {
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			return TelemetryRecord{}, fmt.Errorf("parse %s: %w", Columns[idx], err)
		}
		floats = append(floats, v)
	}
	health, err := strconv.Atoi(row[8])
	if err != nil {
		return TelemetryRecord{}, fmt.Errorf("parse health_score: %w", err)
	}
	traffic, err := strconv.Atoi(row[11])
	if err != nil {
		return TelemetryRecord{}, fmt.Errorf("parse traffic_load: %w", err)
	}

	return TelemetryRecord{
		Timestamp:        row[0],
		Location:         row[1],
		VibrationX:       floats[0],
		VibrationY:       floats[1],
		VibrationZ:       floats[2],
		Strain:           floats[3],
		StressMPa:        floats[4],
		Tilt:             floats[5],
		HealthScore:      health,
		PredictionWindow: row[9],
		DefectType:       row[10],
		TrafficLoad:      traffic,
		Scenario:         NormalizeScenario(row[12]),
	}, nil
}

// Marshal marshals TelemetryRecord to JSON.
func Marshal(record TelemetryRecord) ([]byte, error) {
	return json.Marshal(record)
}

// Health bands used for colour coding and the rule-based verdict.
const (
	HealthBandCritical = "critical"
	HealthBandWarning  = "warning"
	HealthBandGood     = "good"
)

// HealthBand buckets a 0-100 health score at 70 and 90.
func HealthBand(score int) string {
	switch {
	case score < 70:
		return HealthBandCritical
	case score < 90:
		return HealthBandWarning
	default:
		return HealthBandGood
	}
}
