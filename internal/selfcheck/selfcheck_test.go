package selfcheck

import (
	"context"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/bridgetwin/internal/classifier"
	"github.com/example/bridgetwin/internal/dataset"
	"github.com/example/bridgetwin/internal/telemetry"
	"github.com/example/bridgetwin/internal/testutils"
)

func checkByName(r Report, name string) (Check, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}

func TestRunMissingArtifacts(t *testing.T) {
	dir := testutils.TempDir(t, "selfcheck")
	report, err := Run(context.Background(), Options{
		DatasetPath: filepath.Join(dir, "bridge_data.csv"),
		ModelPath:   filepath.Join(dir, "model.forest.zst"),
		Generator:   telemetry.NewGenerator(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !report.Failed() {
		t.Error("Expected report to fail when artifacts are missing")
	}

	c, _ := checkByName(report, "dataset artifact")
	if c.OK || !strings.Contains(c.Message, "run build_dataset first") {
		t.Errorf("Unexpected dataset check %+v", c)
	}
	c, _ = checkByName(report, "classifier artifact")
	if c.OK || !strings.Contains(c.Message, "run train_model first") {
		t.Errorf("Unexpected classifier check %+v", c)
	}
	if c, _ := checkByName(report, "generator critical mode"); !c.OK {
		t.Errorf("Expected generator check to pass, got %+v", c)
	}
	if c, _ := checkByName(report, "classifier inference"); !c.Skipped {
		t.Errorf("Expected inference to be skipped, got %+v", c)
	}
}

func TestRunWithArtifacts(t *testing.T) {
	dir := testutils.TempDir(t, "selfcheck")
	datasetPath := filepath.Join(dir, "bridge_data.csv")
	modelPath := filepath.Join(dir, "model.forest.zst")

	gen := telemetry.NewGenerator(rand.NewSource(42))
	records := dataset.NewBuilder(gen, time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC)).Build(1000)
	if err := dataset.WriteCSV(datasetPath, records); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	opts := classifier.DefaultOptions()
	opts.Trees = 25
	forest, _, err := classifier.Train(records, opts)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if err := forest.Save(modelPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	report, err := Run(context.Background(), Options{DatasetPath: datasetPath, ModelPath: modelPath, Generator: gen})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Failed() {
		t.Fatalf("Expected all checks to pass:\n%s", report)
	}
	if len(report.Checks) != 6 {
		t.Errorf("Expected 6 checks, got %d", len(report.Checks))
	}
	if !strings.Contains(report.String(), "[PASS] classifier inference") {
		t.Errorf("Unexpected report:\n%s", report)
	}
}

func TestRunCorruptModel(t *testing.T) {
	dir := testutils.TempDir(t, "selfcheck")
	modelPath := testutils.TempFile(t, dir, "model-*.zst", "garbage")

	report, err := Run(context.Background(), Options{
		DatasetPath: filepath.Join(dir, "absent.csv"),
		ModelPath:   modelPath,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if c, _ := checkByName(report, "classifier load"); c.OK || c.Skipped {
		t.Errorf("Expected classifier load to fail, got %+v", c)
	}
	if c, _ := checkByName(report, "dataset readable"); !c.Skipped {
		t.Errorf("Expected dataset read to be skipped, got %+v", c)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, Options{}); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestRunForeignFeatureSetModel(t *testing.T) {
	dir := testutils.TempDir(t, "selfcheck")
	modelPath := filepath.Join(dir, "model.forest.zst")
	forest := &classifier.Forest{
		NumFeatures: 3,
		Trees:       []classifier.Tree{{Nodes: []classifier.Node{{Left: -1, Right: -1, Proba: [2]float64{0, 1}}}}},
	}
	if err := forest.Save(modelPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	report, err := Run(context.Background(), Options{DatasetPath: filepath.Join(dir, "absent.csv"), ModelPath: modelPath})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if c, _ := checkByName(report, "classifier load"); c.OK || c.Skipped {
		t.Errorf("Expected classifier load to fail, got %+v", c)
	}
	if c, _ := checkByName(report, "classifier inference"); !c.Skipped {
		t.Errorf("Expected inference to be skipped, got %+v", c)
	}
}
