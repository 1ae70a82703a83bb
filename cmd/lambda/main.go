package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/bootstrap"
	"github.com/visitor-geolocation/internal/config"
	lambdaDelivery "github.com/visitor-geolocation/internal/delivery/lambda"
	"github.com/visitor-geolocation/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Log.Level, "visitor-lambda")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	// Подключения открываются один раз на холодный старт и переиспользуются между вызовами.
	// Миграции в Lambda не запускаем: это делает API при деплое.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	deps, err := bootstrap.Open(ctx, cfg, bootstrap.Options{
		Database:    true,
		Redis:       true,
		Geolocation: true,
	}, log)
	cancel()
	if err != nil {
		log.Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()

	handler := lambdaDelivery.NewHandler(deps.VisitorUseCase(cfg), cfg.Server.CORSAllowOrigins, log)
	lambda.Start(handler.Handle)
}
