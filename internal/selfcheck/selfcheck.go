// Package selfcheck verifies that the offline artifacts exist and that the
// generator and the trained classifier behave as expected.
package selfcheck

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/example/bridgetwin/internal/classifier"
	"github.com/example/bridgetwin/internal/dataset"
	"github.com/example/bridgetwin/internal/telemetry"
)

// Probe is a feature vector well inside the critical band.
var Probe = []float64{0.5, 0.5, 0.5, 600, 3.0}

// Check is the outcome of one verification step.
type Check struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	Message string `json:"message"`
}

// Report collects the checks of one run in execution order.
type Report struct {
	Checks []Check `json:"checks"`
}

// Failed reports whether any non-skipped check failed.
func (r Report) Failed() bool {
	for _, c := range r.Checks {
		if !c.OK && !c.Skipped {
			return true
		}
	}
	return false
}

func (r Report) String() string {
	var b strings.Builder
	for _, c := range r.Checks {
		mark := "PASS"
		switch {
		case c.Skipped:
			mark = "SKIP"
		case !c.OK:
			mark = "FAIL"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", mark, c.Name, c.Message)
	}
	return b.String()
}

func (r *Report) pass(name, format string, args ...interface{}) {
	r.Checks = append(r.Checks, Check{Name: name, OK: true, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) fail(name, format string, args ...interface{}) {
	r.Checks = append(r.Checks, Check{Name: name, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) skip(name, format string, args ...interface{}) {
	r.Checks = append(r.Checks, Check{Name: name, Skipped: true, Message: fmt.Sprintf(format, args...)})
}

// Options configures a run. A nil Generator uses telemetry.Default().
type Options struct {
	DatasetPath string
	ModelPath   string
	Generator   *telemetry.Generator
	Logger      *zap.Logger
}

// Run executes every check. It stops early only if ctx is cancelled.
func Run(ctx context.Context, opts Options) (Report, error) {
	gen := opts.Generator
	if gen == nil {
		gen = telemetry.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var r Report

	checkFile(&r, "dataset artifact", opts.DatasetPath, "build_dataset")
	checkFile(&r, "classifier artifact", opts.ModelPath, "train_model")
	if err := ctx.Err(); err != nil {
		return r, err
	}

	if records, err := dataset.ReadCSV(opts.DatasetPath); err != nil {
		if errors.Is(err, dataset.ErrDatasetMissing) {
			r.skip("dataset readable", "no dataset")
		} else {
			r.fail("dataset readable", "%v", err)
		}
	} else {
		critical := 0
		for _, rec := range records {
			critical += rec.Label()
		}
		r.pass("dataset readable", "%d rows, %d critical", len(records), critical)
	}

	rec := gen.Generate(string(telemetry.ScenarioCritical), "")
	if rec.HealthScore < 70 && rec.PredictionWindow != telemetry.NormalPredictionWindow {
		r.pass("generator critical mode", "health score %d, window %q", rec.HealthScore, rec.PredictionWindow)
	} else {
		r.fail("generator critical mode", "critical scenario returned health score %d, window %q", rec.HealthScore, rec.PredictionWindow)
	}
	if err := ctx.Err(); err != nil {
		return r, err
	}

	forest, err := classifier.Load(opts.ModelPath)
	switch {
	case errors.Is(err, classifier.ErrArtifactMissing):
		r.skip("classifier load", "no artifact")
		r.skip("classifier inference", "no artifact")
	case err != nil:
		r.fail("classifier load", "%v", err)
		r.skip("classifier inference", "classifier not loaded")
	default:
		r.pass("classifier load", "%d trees", len(forest.Trees))
		pred := forest.Predict(Probe)
		if pred == classifier.ClassCritical {
			r.pass("classifier inference", "probe %v -> %d", Probe, pred)
		} else {
			r.fail("classifier inference", "probe %v -> %d, expected %d", Probe, pred, classifier.ClassCritical)
		}
	}

	logger.Info("self-check complete", zap.Int("checks", len(r.Checks)), zap.Bool("failed", r.Failed()))
	return r, nil
}

func checkFile(r *Report, name, path, producer string) {
	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		r.pass(name, "found %s (%d bytes)", path, info.Size())
	case err == nil:
		r.fail(name, "%s is a directory", path)
	case errors.Is(err, os.ErrNotExist):
		r.fail(name, "missing %s: run %s first", path, producer)
	default:
		r.fail(name, "%v", err)
	}
}
