package telemetry

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for record timestamps.
const TimestampLayout = time.RFC3339Nano

// Stress coefficients in MPa per microstrain.
const (
	NormalStressCoefficient   = 0.030
	CriticalStressCoefficient = 0.035
)

// Free-text fields attached to each scenario band.
const (
	NormalPredictionWindow   = "None (Safe)"
	CriticalPredictionWindow = "45-60 days"
	NormalDefectType         = "None"
	CriticalDefectType       = "Early-stage Rebar Corrosion"
)

type floatRange struct{ lo, hi float64 }

type intRange struct{ lo, hi int }

type band struct {
	vibration        floatRange
	strain           floatRange
	tilt             floatRange
	health           intRange
	traffic          intRange
	stressCoeff      float64
	predictionWindow string
	defectType       string
}

var bands = map[Scenario]band{
	ScenarioNormal: {
		vibration:        floatRange{0.001, 0.25},
		strain:           floatRange{10, 100},
		tilt:             floatRange{-0.5, 0.5},
		health:           intRange{95, 100},
		traffic:          intRange{800, 3500},
		stressCoeff:      NormalStressCoefficient,
		predictionWindow: NormalPredictionWindow,
		defectType:       NormalDefectType,
	},
	ScenarioCritical: {
		// strictly above the 0.3g alert threshold
		vibration:        floatRange{0.31, 0.8},
		strain:           floatRange{500, 1000},
		tilt:             floatRange{2.0, 5.0},
		health:           intRange{45, 65},
		traffic:          intRange{4500, 8000},
		stressCoeff:      CriticalStressCoefficient,
		predictionWindow: CriticalPredictionWindow,
		defectType:       CriticalDefectType,
	},
}

// StressCoefficient returns the strain-to-stress factor for a scenario.
func StressCoefficient(s Scenario) float64 {
	return bands[NormalizeScenario(string(s))].stressCoeff
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// Generator produces synthetic telemetry records. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator returns a generator drawing from src. A nil src is seeded from the clock.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Generator{rng: rand.New(src), now: time.Now}
}

// WithClock overrides the clock used for record timestamps.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

var (
	defaultOnce sync.Once
	defaultGen  *Generator
)

// Default returns a process-wide generator seeded from the clock.
func Default() *Generator {
	defaultOnce.Do(func() {
		defaultGen = NewGenerator(nil)
	})
	return defaultGen
}

// Generate draws one record for the scenario. Unknown scenarios fall back to
// normal and an empty location is drawn from Locations.
func (g *Generator) Generate(scenario, location string) TelemetryRecord {
	s := NormalizeScenario(scenario)
	b := bands[s]

	g.mu.Lock()
	defer g.mu.Unlock()

	if location == "" {
		location = Locations[g.rng.Intn(len(Locations))]
	}

	strain := Round(g.uniform(b.strain), 2)
	return TelemetryRecord{
		Timestamp:        g.now().Format(TimestampLayout),
		Location:         location,
		VibrationX:       Round(g.uniform(b.vibration), 4),
		VibrationY:       Round(g.uniform(b.vibration), 4),
		VibrationZ:       Round(g.uniform(b.vibration), 4),
		Strain:           strain,
		StressMPa:        Round(strain*b.stressCoeff, 2),
		Tilt:             Round(g.uniform(b.tilt), 2),
		HealthScore:      g.randint(b.health),
		PredictionWindow: b.predictionWindow,
		DefectType:       b.defectType,
		TrafficLoad:      g.randint(b.traffic),
		Scenario:         s,
	}
}

// Float64 exposes the generator's stream for callers that need extra draws
// consistent with the same seed.
func (g *Generator) Float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

func (g *Generator) uniform(r floatRange) float64 {
	return r.lo + g.rng.Float64()*(r.hi-r.lo)
}

// randint is inclusive on both ends.
func (g *Generator) randint(r intRange) int {
	return r.lo + g.rng.Intn(r.hi-r.lo+1)
}
