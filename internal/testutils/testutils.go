package testutils

import (
	"os"

	"go.uber.org/zap"

	"github.com/example/bridgetwin/internal/telemetry"
)

// TestLogger creates a logger for testing that can be silenced
func TestLogger(silent bool) *zap.Logger {
	if silent {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// SampleCriticalRecord returns a fixed record inside the critical band.
func SampleCriticalRecord() telemetry.TelemetryRecord {
	return telemetry.TelemetryRecord{
		Timestamp:        "2025-07-18T20:42:34Z",
		Location:         "KR Puram Suspension Bridge",
		VibrationX:       0.5123,
		VibrationY:       0.4411,
		VibrationZ:       0.6702,
		Strain:           742.18,
		StressMPa:        25.98,
		Tilt:             3.41,
		HealthScore:      52,
		PredictionWindow: telemetry.CriticalPredictionWindow,
		DefectType:       telemetry.CriticalDefectType,
		TrafficLoad:      6120,
		Scenario:         telemetry.ScenarioCritical,
	}
}

// SampleNormalRecord returns a fixed record inside the normal band.
func SampleNormalRecord() telemetry.TelemetryRecord {
	return telemetry.TelemetryRecord{
		Timestamp:        "2025-07-18T20:44:04Z",
		Location:         "Domlur Flyover",
		VibrationX:       0.0312,
		VibrationY:       0.1207,
		VibrationZ:       0.0875,
		Strain:           48.5,
		StressMPa:        1.46,
		Tilt:             -0.12,
		HealthScore:      98,
		PredictionWindow: telemetry.NormalPredictionWindow,
		DefectType:       telemetry.NormalDefectType,
		TrafficLoad:      2140,
		Scenario:         telemetry.ScenarioNormal,
	}
}

// SetupTestEnvironment sets env vars and restores their previous values on cleanup.
func SetupTestEnvironment(t interface {
	Setenv(key, value string)
}, env map[string]string) {
	for k, v := range env {
		t.Setenv(k, v)
	}
}

// UnsetEnv removes key for the duration of the test.
func UnsetEnv(t interface {
	Cleanup(func())
}, key string) {
	prev, had := os.LookupEnv(key)
	os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, prev)
		}
	})
}

// AssertNoError is a helper function to check for errors in tests
func AssertNoError(t interface{ Errorf(string, ...interface{}) }, err error, msg string) {
	if err != nil {
		t.Errorf("%s: %v", msg, err)
	}
}

// AssertError is a helper function to check that an error occurred
func AssertError(t interface{ Errorf(string, ...interface{}) }, err error, msg string) {
	if err == nil {
		t.Errorf("%s: expected error but got nil", msg)
	}
}

// AssertEqual is a helper function to check equality
func AssertEqual(t interface{ Errorf(string, ...interface{}) }, expected, actual interface{}, msg string) {
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}
