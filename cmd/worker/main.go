package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/bootstrap"
	"github.com/visitor-geolocation/internal/config"
	"github.com/visitor-geolocation/internal/infrastructure/webhook"
	"github.com/visitor-geolocation/internal/pkg/logger"
	"github.com/visitor-geolocation/internal/usecase"
	"github.com/visitor-geolocation/internal/worker"
	"github.com/visitor-geolocation/internal/worker/notification"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}
	if !cfg.Redis.Enabled {
		fmt.Println("Notification worker requires Redis. Set REDIS_ENABLED=true.")
		os.Exit(1)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "visitor-worker")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Visitor Notification Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.Int("batch_size", cfg.Worker.BatchSize),
		zap.Int("webhook_targets", len(cfg.Notify.Webhooks)))

	if len(cfg.Notify.Webhooks) == 0 {
		log.Warn("No WEBHOOK_URLS configured, notifications will be acknowledged and dropped")
	}

	// 3. Connect to Redis
	deps, err := bootstrap.Open(context.Background(), cfg, bootstrap.Options{Redis: true}, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer deps.Close()

	// 4. Initialize use cases
	notificationUC := usecase.NewNotificationUseCase(
		cfg.Notify.Webhooks,
		usecase.NewNotificationFormatter(cfg.Notify.Username),
		webhook.NewSender(cfg.Notify.Timeout, log),
		log,
	)

	// 5. Initialize workers
	notificationWorker := notification.NewNotificationWorker(
		deps.StreamRepo,
		notificationUC,
		notification.Config{
			ConsumerGroup: cfg.Worker.ConsumerGroup,
			BatchSize:     cfg.Worker.BatchSize,
			ReadBlock:     cfg.Worker.StreamReadTimeout,
			MaxRetries:    cfg.Worker.MaxRetries,
		},
		log,
	)

	// 6. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(notificationWorker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	// Stop дожидается завершения текущего батча
	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
