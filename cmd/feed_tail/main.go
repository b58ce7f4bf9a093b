package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/example/bridgetwin/config"
	"github.com/example/bridgetwin/internal/logging"
	"github.com/example/bridgetwin/internal/shared"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	hostname, _ := os.Hostname()
	group := flag.String("group", "feed-tail", "consumer group")
	name := flag.String("name", hostname, "consumer name")
	flag.Parse()

	logger, err := logging.NewLogger("feed_tail")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if !cfg.Feed.Enabled() {
		fmt.Fprintln(os.Stderr, "FEED_REDIS_ADDR is not set")
		os.Exit(1)
	}

	queue, err := shared.NewRedisStreamQueue(cfg.Feed.RedisAddr, cfg.Feed.RedisPassword, cfg.Feed.Stream, logger)
	if err != nil {
		logger.Fatal("connect feed", zap.Error(err))
	}
	defer queue.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("tailing feed", zap.String("stream", cfg.Feed.Stream), zap.String("group", *group), zap.String("name", *name))
	err = queue.Subscribe(ctx, *group, *name, func(topic string, body []byte, id string) error {
		fmt.Printf("%s %s %s\n", id, topic, body)
		return nil
	})
	if err != nil {
		logger.Error("subscribe", zap.Error(err))
		os.Exit(1)
	}
}
