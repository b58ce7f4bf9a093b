package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/example/bridgetwin/config"
	"github.com/example/bridgetwin/internal/classifier"
	"github.com/example/bridgetwin/internal/dataset"
	"github.com/example/bridgetwin/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	defaults := classifier.DefaultOptions()
	in := flag.String("in", cfg.DatasetPath, "dataset CSV path")
	out := flag.String("out", cfg.ModelPath, "classifier artifact path")
	trees := flag.Int("trees", defaults.Trees, "number of trees")
	depth := flag.Int("max-depth", defaults.MaxDepth, "maximum tree depth")
	seed := flag.Int64("seed", defaults.Seed, "random seed for split and forest")
	flag.Parse()

	logger, err := logging.NewLogger("train_model")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	records, err := dataset.ReadCSV(*in)
	if err != nil {
		if errors.Is(err, dataset.ErrDatasetMissing) {
			fmt.Fprintf(os.Stderr, "dataset not found at %s: run build_dataset first\n", *in)
			os.Exit(1)
		}
		logger.Error("read dataset", zap.String("path", *in), zap.Error(err))
		os.Exit(1)
	}

	opts := defaults
	opts.Trees = *trees
	opts.MaxDepth = *depth
	opts.Seed = *seed

	start := time.Now()
	forest, metrics, err := classifier.Train(records, opts)
	if err != nil {
		logger.Error("train", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("training complete",
		zap.Int("train_size", metrics.TrainSize),
		zap.Int("test_size", metrics.TestSize),
		zap.Float64("accuracy", metrics.Accuracy),
		zap.Duration("elapsed", time.Since(start)),
	)
	fmt.Print(metrics.Report())

	if err := forest.Save(*out); err != nil {
		logger.Error("save artifact", zap.String("path", *out), zap.Error(err))
		os.Exit(1)
	}
	fmt.Printf("Model saved to %s\n", *out)
}
