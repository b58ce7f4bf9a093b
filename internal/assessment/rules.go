package assessment

import (
	"fmt"
	"math"

	"github.com/example/bridgetwin/internal/telemetry"
)

// Alert thresholds shared by the rule branch, the LLM prompt and the dashboard colouring.
const (
	VibrationLimitG   = 0.3
	TiltLimitDegrees  = 2.0
	HealthCriticalMin = 70
)

// Finding is one threshold that a record breaches.
type Finding struct {
	Metric  string  `json:"metric"`
	Value   float64 `json:"value"`
	Limit   float64 `json:"limit"`
	Message string  `json:"message"`
}

// Evaluate returns every threshold breached by r. An empty result means safe.
func Evaluate(r telemetry.TelemetryRecord) []Finding {
	var findings []Finding
	if v := r.MaxVibration(); v > VibrationLimitG {
		findings = append(findings, Finding{
			Metric:  "vibration",
			Value:   v,
			Limit:   VibrationLimitG,
			Message: fmt.Sprintf("Vibration peak %.4fg exceeds the %.1fg limit and indicates potential structural instability.", v, VibrationLimitG),
		})
	}
	if t := math.Abs(r.Tilt); t > TiltLimitDegrees {
		findings = append(findings, Finding{
			Metric:  "tilt",
			Value:   r.Tilt,
			Limit:   TiltLimitDegrees,
			Message: fmt.Sprintf("Tilt deviation of %.2f° exceeds %.1f° and suggests foundation settlement.", r.Tilt, TiltLimitDegrees),
		})
	}
	if r.HealthScore < HealthCriticalMin {
		findings = append(findings, Finding{
			Metric:  "health_score",
			Value:   float64(r.HealthScore),
			Limit:   HealthCriticalMin,
			Message: fmt.Sprintf("Health score %d is in the critical band (below %d).", r.HealthScore, HealthCriticalMin),
		})
	}
	return findings
}

// StatusOf applies the threshold rules to r.
func StatusOf(r telemetry.TelemetryRecord) Status {
	if len(Evaluate(r)) > 0 {
		return StatusCritical
	}
	return StatusSafe
}
