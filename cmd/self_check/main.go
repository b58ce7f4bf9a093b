package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/bridgetwin/config"
	"github.com/example/bridgetwin/internal/logging"
	"github.com/example/bridgetwin/internal/selfcheck"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.NewLogger("self_check")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := selfcheck.Run(ctx, selfcheck.Options{
		DatasetPath: cfg.DatasetPath,
		ModelPath:   cfg.ModelPath,
		Logger:      logger,
	})
	fmt.Print(report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "self-check interrupted: %v\n", err)
		os.Exit(1)
	}
	if report.Failed() {
		os.Exit(1)
	}
}
