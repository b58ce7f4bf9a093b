package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/bridgetwin/config"
	"github.com/example/bridgetwin/internal/assessment"
	"github.com/example/bridgetwin/internal/classifier"
	"github.com/example/bridgetwin/internal/logging"
	"github.com/example/bridgetwin/internal/metrics"
	"github.com/example/bridgetwin/internal/shared"
	"github.com/example/bridgetwin/internal/telemetry"
	_ "github.com/example/bridgetwin/services/dashboard/docs"
)

// @title Bridge Digital Twin API
// @version 1.0
// @description Synthetic bridge telemetry and structural safety assessment.

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.NewLogger(serviceName)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	metrics.InitMetrics(serviceName)

	models := classifier.LoadHandle(cfg.ModelPath, logger)
	_, ok := models.Model()
	metrics.SetClassifierAvailable(serviceName, ok)

	engine := assessment.NewEngine(assessment.Options{
		Chat:          assessment.NewOpenAIClient(cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.Timeout()),
		Models:        models,
		CredentialEnv: cfg.LLM.CredentialEnv,
		Logger:        logger,
		Service:       serviceName,
	})

	var feed *shared.Feed
	if cfg.Feed.Enabled() {
		queue, err := shared.NewRedisStreamQueue(cfg.Feed.RedisAddr, cfg.Feed.RedisPassword, cfg.Feed.Stream, logger)
		if err != nil {
			logger.Warn("feed disabled", zap.String("addr", cfg.Feed.RedisAddr), zap.Error(err))
		} else {
			feed = shared.NewFeed(queue, serviceName, logger)
			defer feed.Close()
		}
	}

	srv := newServer(telemetry.Default(), engine, feed, logger)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info("dashboard started",
		zap.String("addr", httpServer.Addr),
		zap.Bool("classifier_available", ok),
		zap.Bool("feed_enabled", feed != nil),
		zap.String("llm_model", cfg.LLM.Model),
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("listen", zap.Error(err))
	}
	metrics.SetServiceHealth(serviceName, false)
	logger.Info("dashboard stopped")
}
