package main

// @title Visitor Geolocation API
// @version 1.0.0
// @description Сервис геолокации посетителей сайта. Определяет IP клиента за прокси и CDN, геолоцирует его через HTTP-провайдера с fallback на MaxMind, оценивает радиус точности по полигону доверия провайдера.
// @description
// @description Основные возможности:
// @description - Геолокация текущего посетителя и произвольного IP
// @description - Оценка радиуса точности по полигону доверия
// @description - Журнал визитов и статистика
// @description - Уведомления о визитах в Discord/Slack через воркер

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/visitor-geolocation/docs"
	"github.com/visitor-geolocation/internal/bootstrap"
	"github.com/visitor-geolocation/internal/config"
	httpDelivery "github.com/visitor-geolocation/internal/delivery/http"
	"github.com/visitor-geolocation/internal/delivery/http/handler"
	"github.com/visitor-geolocation/internal/pkg/logger"
	"github.com/visitor-geolocation/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "visitor-api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Visitor Geolocation API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.Bool("db_enabled", cfg.Database.Enabled),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.String("axis_order", string(cfg.Provider.AxisOrder)),
		zap.Bool("radius_lenient", cfg.Radius.Lenient),
	)

	// 3. Connect to PostgreSQL, Redis and geolocation sources
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	deps, err := bootstrap.Open(ctx, cfg, bootstrap.Options{
		Database:    true,
		Migrate:     true,
		Redis:       true,
		Geolocation: true,
	}, log)
	cancel()
	if err != nil {
		log.Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()

	log.Info("Dependencies initialized",
		zap.Bool("provider", deps.Provider != nil),
		zap.Bool("maxmind", deps.MaxMind != nil),
	)

	// 4. Initialize Use Cases
	visitorUC := deps.VisitorUseCase(cfg)
	geoUC := usecase.NewGeoUseCase(cfg.Radius.Lenient, log)

	// 5. Initialize HTTP Handlers
	visitorHandler := handler.NewVisitorHandler(visitorUC, log)
	geoHandler := handler.NewGeoHandler(geoUC, log)

	var statsHandler *handler.StatsHandler
	if deps.VisitRepo != nil {
		statsUC := usecase.NewStatsUseCase(deps.VisitRepo, deps.CacheRepo, cfg.Cache.StatsCacheTTL, log)
		statsHandler = handler.NewStatsHandler(statsUC, log)
	}

	checks := map[string]handler.HealthChecker{}
	if deps.DB != nil {
		checks["postgres"] = deps.DB
	}
	if deps.Redis != nil {
		checks["redis"] = deps.Redis
	}
	healthHandler := handler.NewHealthHandler(checks)

	// 6. Initialize HTTP Server
	server := httpDelivery.NewServer(
		cfg,
		log,
		visitorHandler,
		geoHandler,
		statsHandler,
		healthHandler,
	)

	// 7. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 8. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
