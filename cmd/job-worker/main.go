// Package main 异步任务执行器入口（job-worker）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"readrecall-api/internal/config"
	"readrecall-api/internal/infrastructure/messaging"
	einoobs "readrecall-api/internal/observability/eino"
	"readrecall-api/internal/wire"
	"readrecall-api/pkg/logger"
	"readrecall-api/pkg/tracer"

	"github.com/joho/godotenv"
)

// dlqAlertThreshold 死信队列堆积告警阈值
const dlqAlertThreshold = 100

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()
	log := logger.FromContext(ctx)

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "job-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	einoobs.Init()

	app, cleanupApp, err := wire.InitializeWorker(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize worker", err)
	}
	defer cleanupApp()

	// 表结构由 api-gateway 负责迁移，这里只确保向量集合
	if app.Index != nil {
		if err := app.Index.EnsureCollection(ctx); err != nil {
			log.Warn("failed to ensure vector collection", "error", err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	checkpointConsumer := (*messaging.Consumer)(app.CheckpointConsumer)
	bookProcessConsumer := (*messaging.Consumer)(app.BookProcessConsumer)

	if err := checkpointConsumer.Start(runCtx); err != nil {
		logger.Fatal(ctx, "failed to start checkpoint consumer", err)
	}
	if err := bookProcessConsumer.Start(runCtx); err != nil {
		logger.Fatal(ctx, "failed to start book process consumer", err)
	}

	go checkpointConsumer.MonitorDLQ(runCtx, dlqAlertThreshold)
	go bookProcessConsumer.MonitorDLQ(runCtx, dlqAlertThreshold)

	log.Info("job-worker started",
		"checkpoint_stream", string(messaging.StreamCheckpointGen),
		"book_process_stream", string(messaging.StreamBookProcess),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down job-worker...")
	cancel()
	checkpointConsumer.Stop()
	bookProcessConsumer.Stop()
	log.Info("job-worker exited")
}
