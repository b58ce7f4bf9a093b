package classifier

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/example/bridgetwin/internal/telemetry"
)

// Options configures a training run.
type Options struct {
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	// Seed drives both the holdout shuffle and the forest.
	Seed         int64
	TestFraction float64
}

// DefaultOptions mirrors the reference training job: 100 trees, seed 42, 80/20 split.
func DefaultOptions() Options {
	return Options{
		Trees:           100,
		MaxDepth:        12,
		MinSamplesSplit: 2,
		Seed:            42,
		TestFraction:    0.2,
	}
}

// ClassMetrics is the per-class part of the holdout report.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Metrics summarises holdout performance.
type Metrics struct {
	TrainSize int             `json:"train_size"`
	TestSize  int             `json:"test_size"`
	Accuracy  float64         `json:"accuracy"`
	Classes   [2]ClassMetrics `json:"classes"`
	// Confusion[actual][predicted]
	Confusion [2][2]int `json:"confusion"`
}

// Split shuffles indices with seed and returns the train and test partitions.
// The test partition holds ceil(n*testFraction) samples.
func Split(n int, testFraction float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(math.Ceil(float64(n) * testFraction))
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 0 {
		nTest = 0
	}
	return perm[nTest:], perm[:nTest]
}

// Train fits a forest on the records and evaluates it on a seeded holdout.
func Train(records []telemetry.TelemetryRecord, opts Options) (*Forest, Metrics, error) {
	if len(records) < 2 {
		return nil, Metrics{}, fmt.Errorf("classifier: need at least 2 records, got %d", len(records))
	}
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		opts.TestFraction = 0.2
	}

	X := make([][]float64, len(records))
	y := make([]int, len(records))
	for i, r := range records {
		X[i] = r.Features()
		y[i] = r.Label()
	}

	trainIdx, testIdx := Split(len(records), opts.TestFraction, opts.Seed)
	Xtrain, ytrain := subset(X, y, trainIdx)
	Xtest, ytest := subset(X, y, testIdx)

	forest, err := FitForest(Xtrain, ytrain, ForestParams{
		Trees:           opts.Trees,
		MaxDepth:        opts.MaxDepth,
		MinSamplesSplit: opts.MinSamplesSplit,
		Seed:            opts.Seed,
	})
	if err != nil {
		return nil, Metrics{}, err
	}
	forest.FeatureNames = append([]string(nil), telemetry.FeatureNames...)

	m := Evaluate(forest, Xtest, ytest)
	m.TrainSize = len(trainIdx)
	return forest, m, nil
}

func subset(X [][]float64, y []int, idx []int) ([][]float64, []int) {
	xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for i, j := range idx {
		xs[i] = X[j]
		ys[i] = y[j]
	}
	return xs, ys
}

// Evaluate computes accuracy and per-class precision/recall/F1 for m on X, y.
func Evaluate(m Model, X [][]float64, y []int) Metrics {
	var out Metrics
	out.TestSize = len(X)
	correct := 0
	for i, x := range X {
		pred := m.Predict(x)
		out.Confusion[y[i]][pred]++
		if pred == y[i] {
			correct++
		}
	}
	if len(X) > 0 {
		out.Accuracy = float64(correct) / float64(len(X))
	}

	for c := 0; c < 2; c++ {
		tp := out.Confusion[c][c]
		predicted := out.Confusion[0][c] + out.Confusion[1][c]
		actual := out.Confusion[c][0] + out.Confusion[c][1]
		cm := ClassMetrics{Support: actual}
		if predicted > 0 {
			cm.Precision = float64(tp) / float64(predicted)
		}
		if actual > 0 {
			cm.Recall = float64(tp) / float64(actual)
		}
		if cm.Precision+cm.Recall > 0 {
			cm.F1 = 2 * cm.Precision * cm.Recall / (cm.Precision + cm.Recall)
		}
		out.Classes[c] = cm
	}
	return out
}

// Report renders the metrics as a plain-text classification report.
func (m Metrics) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Accuracy: %.2f%%\n\n", m.Accuracy*100)
	fmt.Fprintf(&b, "%12s %10s %10s %10s %10s\n", "", "precision", "recall", "f1-score", "support")
	for c, cm := range m.Classes {
		fmt.Fprintf(&b, "%12s %10.2f %10.2f %10.2f %10d\n", ClassNames[c], cm.Precision, cm.Recall, cm.F1, cm.Support)
	}
	fmt.Fprintf(&b, "\n%12s %10s %10s %10.2f %10d\n", "accuracy", "", "", m.Accuracy, m.TestSize)
	return b.String()
}
