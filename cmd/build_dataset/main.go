package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/example/bridgetwin/config"
	"github.com/example/bridgetwin/internal/dataset"
	"github.com/example/bridgetwin/internal/logging"
	"github.com/example/bridgetwin/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	n := flag.Int("n", 1000, "number of rows to generate")
	out := flag.String("out", cfg.DatasetPath, "output CSV path (overwritten)")
	seed := flag.Int64("seed", 0, "random seed (0 = time based)")
	ratio := flag.Float64("critical-ratio", dataset.DefaultCriticalRatio, "probability that a row is critical")
	flag.Parse()

	logger, err := logging.NewLogger("build_dataset")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if *n <= 0 {
		fmt.Fprintln(os.Stderr, "-n must be positive")
		os.Exit(2)
	}

	var src rand.Source
	if *seed != 0 {
		src = rand.NewSource(*seed)
	}
	builder := dataset.NewBuilder(telemetry.NewGenerator(src), time.Now())
	builder.CriticalRatio = *ratio

	records := builder.Build(*n)
	if err := dataset.WriteCSV(*out, records); err != nil {
		logger.Error("write dataset", zap.String("path", *out), zap.Error(err))
		os.Exit(1)
	}

	critical := 0
	for _, r := range records {
		critical += r.Label()
	}
	logger.Info("dataset written",
		zap.String("path", *out),
		zap.Int("rows", len(records)),
		zap.Int("columns", len(telemetry.Columns)),
		zap.Int("critical", critical),
	)
	fmt.Printf("Dataset generated: %s (%d rows, %d columns, %d critical)\n", *out, len(records), len(telemetry.Columns), critical)
}
