package classifier

import (
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/bridgetwin/internal/dataset"
	"github.com/example/bridgetwin/internal/telemetry"
	"github.com/example/bridgetwin/internal/testutils"
)

func buildDataset(seed int64, n int) []telemetry.TelemetryRecord {
	gen := telemetry.NewGenerator(rand.NewSource(seed))
	return dataset.NewBuilder(gen, time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC)).Build(n)
}

func trainDefault(t *testing.T) (*Forest, Metrics) {
	t.Helper()
	forest, metrics, err := Train(buildDataset(42, 1000), DefaultOptions())
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	return forest, metrics
}

func probeSet() [][]float64 {
	gen := telemetry.NewGenerator(rand.NewSource(99))
	probes := [][]float64{{0.5, 0.5, 0.5, 600, 3.0}, {0.1, 0.1, 0.1, 50, 0.0}}
	for i := 0; i < 20; i++ {
		probes = append(probes, gen.Generate("critical", "").Features(), gen.Generate("normal", "").Features())
	}
	return probes
}

func TestTrainAccuracy(t *testing.T) {
	forest, metrics := trainDefault(t)

	if metrics.TrainSize != 800 || metrics.TestSize != 200 {
		t.Errorf("Expected 800/200 split, got %d/%d", metrics.TrainSize, metrics.TestSize)
	}
	if metrics.Accuracy <= 0.90 {
		t.Errorf("Expected holdout accuracy above 0.90, got %.3f", metrics.Accuracy)
	}
	if len(forest.Trees) != 100 {
		t.Errorf("Expected 100 trees, got %d", len(forest.Trees))
	}
	if forest.NumFeatures != 5 {
		t.Errorf("Expected 5 features, got %d", forest.NumFeatures)
	}
	if got := metrics.Classes[ClassNormal].Support + metrics.Classes[ClassCritical].Support; got != metrics.TestSize {
		t.Errorf("Expected supports to sum to %d, got %d", metrics.TestSize, got)
	}
}

func TestTrainedModelSeparatesBands(t *testing.T) {
	forest, _ := trainDefault(t)

	if got := forest.Predict([]float64{0.5, 0.5, 0.5, 600, 3.0}); got != ClassCritical {
		t.Errorf("Expected high probe to be critical, got %d", got)
	}
	if got := forest.Predict([]float64{0.05, 0.1, 0.02, 40, 0.1}); got != ClassNormal {
		t.Errorf("Expected low probe to be normal, got %d", got)
	}

	p := forest.PredictProba([]float64{0.5, 0.5, 0.5, 600, 3.0})
	if math.Abs(p[0]+p[1]-1) > 1e-9 {
		t.Errorf("Expected probabilities to sum to 1, got %v", p)
	}
}

func TestTrainDeterministic(t *testing.T) {
	records := buildDataset(5, 300)
	a, ma, err := Train(records, DefaultOptions())
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	b, mb, err := Train(records, DefaultOptions())
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if ma != mb {
		t.Errorf("Expected identical metrics, got %+v and %+v", ma, mb)
	}
	for _, x := range probeSet() {
		if a.PredictProba(x) != b.PredictProba(x) {
			t.Fatalf("Expected identical probabilities for %v", x)
		}
	}
}

func TestTrainRejectsTinyDataset(t *testing.T) {
	if _, _, err := Train(buildDataset(1, 1), DefaultOptions()); err == nil {
		t.Error("Expected error for single-record dataset")
	}
}

func TestSplit(t *testing.T) {
	train, test := Split(1000, 0.2, 42)
	if len(train) != 800 || len(test) != 200 {
		t.Fatalf("Expected 800/200, got %d/%d", len(train), len(test))
	}
	seen := make(map[int]bool, 1000)
	for _, i := range append(append([]int{}, train...), test...) {
		if seen[i] {
			t.Fatalf("Index %d appears twice", i)
		}
		seen[i] = true
	}

	_, test2 := Split(1000, 0.2, 42)
	for i := range test {
		if test[i] != test2[i] {
			t.Fatal("Expected split to be reproducible for a fixed seed")
		}
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	forest, _ := trainDefault(t)
	path := filepath.Join(testutils.TempDir(t, "model"), "model.forest.zst")

	if err := forest.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for _, x := range probeSet() {
		if forest.Predict(x) != loaded.Predict(x) {
			t.Errorf("Prediction mismatch for %v", x)
		}
		if forest.PredictProba(x) != loaded.PredictProba(x) {
			t.Errorf("Probability mismatch for %v", x)
		}
	}
	if strings.Join(loaded.FeatureNames, ",") != strings.Join(telemetry.FeatureNames, ",") {
		t.Errorf("Unexpected feature names %v", loaded.FeatureNames)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := testutils.TempDir(t, "model")

	t.Run("missing", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "absent.zst"))
		if !errors.Is(err, ErrArtifactMissing) {
			t.Errorf("Expected ErrArtifactMissing, got %v", err)
		}
	})

	t.Run("bad header", func(t *testing.T) {
		path := testutils.TempFile(t, dir, "bad-*.zst", "not a model")
		_, err := Load(path)
		if !errors.Is(err, ErrArtifactCorrupt) {
			t.Errorf("Expected ErrArtifactCorrupt, got %v", err)
		}
	})

	t.Run("body is not zstd", func(t *testing.T) {
		path := filepath.Join(dir, "plain.zst")
		if err := os.WriteFile(path, append(append([]byte{}, MagicHeader...), []byte("plain text body")...), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := Load(path)
		if !errors.Is(err, ErrArtifactCorrupt) {
			t.Errorf("Expected ErrArtifactCorrupt, got %v", err)
		}
	})
}

func TestLoadRejectsForeignFeatureSet(t *testing.T) {
	dir := testutils.TempDir(t, "model")
	leaf := []Tree{{Nodes: []Node{{Left: -1, Right: -1, Proba: [2]float64{1, 0}}}}}

	tests := []struct {
		name   string
		forest *Forest
	}{
		{"fewer features", &Forest{NumFeatures: 3, Trees: leaf}},
		{"more features", &Forest{NumFeatures: 6, Trees: leaf}},
		{"renamed features", &Forest{
			NumFeatures:  5,
			FeatureNames: []string{"a", "b", "c", "d", "e"},
			Trees:        leaf,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".zst")
			if err := tt.forest.Save(path); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if _, err := Load(path); !errors.Is(err, ErrArtifactCorrupt) {
				t.Errorf("Expected ErrArtifactCorrupt, got %v", err)
			}
			h := LoadHandle(path, zap.NewNop())
			if _, ok := h.Model(); ok {
				t.Error("Expected absent model")
			}
		})
	}
}

func TestPredictWrongArityPanics(t *testing.T) {
	forest := &Forest{NumFeatures: 5, Trees: []Tree{{Nodes: []Node{{Left: -1, Right: -1, Proba: [2]float64{1, 0}}}}}}
	for _, x := range [][]float64{nil, {1, 2, 3}, {1, 2, 3, 4, 5, 6}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Expected panic for %d features", len(x))
				}
			}()
			forest.Predict(x)
		}()
	}
}

type constModel int

func (c constModel) Predict(x []float64) int { return int(c) }

func (c constModel) PredictProba(x []float64) [2]float64 {
	if c == ClassCritical {
		return [2]float64{0, 1}
	}
	return [2]float64{1, 0}
}

func TestEvaluate(t *testing.T) {
	X := [][]float64{{0}, {0}, {0}, {0}}
	y := []int{0, 0, 0, 1}

	m := Evaluate(constModel(ClassNormal), X, y)
	if m.Accuracy != 0.75 {
		t.Errorf("Expected accuracy 0.75, got %v", m.Accuracy)
	}
	if m.Classes[ClassNormal].Precision != 0.75 || m.Classes[ClassNormal].Recall != 1 {
		t.Errorf("Unexpected normal metrics %+v", m.Classes[ClassNormal])
	}
	if m.Classes[ClassCritical].Recall != 0 || m.Classes[ClassCritical].F1 != 0 {
		t.Errorf("Unexpected critical metrics %+v", m.Classes[ClassCritical])
	}
	if m.Confusion[1][0] != 1 {
		t.Errorf("Expected one false negative, got %d", m.Confusion[1][0])
	}

	report := m.Report()
	for _, want := range []string{"Accuracy: 75.00%", "Normal", "Critical", "precision"} {
		if !strings.Contains(report, want) {
			t.Errorf("Report missing %q:\n%s", want, report)
		}
	}
}

func TestHandle(t *testing.T) {
	t.Run("absent when artifact missing", func(t *testing.T) {
		h := LoadHandle(filepath.Join(testutils.TempDir(t, "model"), "none.zst"), zap.NewNop())
		if _, ok := h.Model(); ok {
			t.Error("Expected absent model")
		}
		if !errors.Is(h.Err(), ErrArtifactMissing) {
			t.Errorf("Expected ErrArtifactMissing, got %v", h.Err())
		}
	})

	t.Run("absent when artifact corrupt", func(t *testing.T) {
		path := testutils.TempFile(t, "", "corrupt-*.zst", "garbage")
		h := LoadHandle(path, zap.NewNop())
		if _, ok := h.Model(); ok {
			t.Error("Expected absent model")
		}
	})

	t.Run("present when loaded", func(t *testing.T) {
		h := NewHandle(constModel(ClassCritical))
		m, ok := h.Model()
		if !ok || m.Predict(nil) != ClassCritical {
			t.Error("Expected wrapped model")
		}
	})

	t.Run("nil handle is absent", func(t *testing.T) {
		var h *Handle
		if _, ok := h.Model(); ok {
			t.Error("Expected nil handle to be absent")
		}
	})
}
