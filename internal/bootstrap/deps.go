// Package bootstrap собирает инфраструктурные зависимости из конфигурации.
// Используется API, Lambda и воркером, чтобы проводка была одинаковой.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/config"
	"github.com/visitor-geolocation/internal/domain/repository"
	"github.com/visitor-geolocation/internal/infrastructure/ipgeolocation"
	"github.com/visitor-geolocation/internal/infrastructure/maxmind"
	"github.com/visitor-geolocation/internal/repository/cache"
	"github.com/visitor-geolocation/internal/repository/postgres"
	redisRepo "github.com/visitor-geolocation/internal/repository/redis"
	"github.com/visitor-geolocation/internal/usecase"
)

// Dependencies - открытые подключения и репозитории. Отключённые в конфиге части равны nil.
type Dependencies struct {
	DB         *postgres.DB
	Redis      *cache.Redis
	MaxMind    *maxmind.Reader
	Provider   repository.GeolocationRepository
	CacheRepo  repository.CacheRepository
	VisitRepo  repository.VisitRepository
	StreamRepo repository.StreamRepository

	logger *zap.Logger
}

// Options выбирает, какие части открывать
type Options struct {
	Database    bool
	Migrate     bool
	Redis       bool
	Geolocation bool
}

// Open подключается ко всему, что включено в cfg и opts. При ошибке уже открытое закрывается.
func Open(ctx context.Context, cfg *config.Config, opts Options, log *zap.Logger) (*Dependencies, error) {
	d := &Dependencies{logger: log}

	if opts.Database && cfg.Database.Enabled {
		db, err := postgres.New(&cfg.Database, log)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.DB = db
		d.VisitRepo = postgres.NewVisitRepository(db)

		if opts.Migrate {
			if err := db.Migrate(ctx); err != nil {
				d.Close()
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
	}

	if opts.Redis && cfg.Redis.Enabled {
		rdb, err := cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.Redis = rdb
		d.CacheRepo = cache.NewCacheRepository(rdb)
		d.StreamRepo = redisRepo.NewStreamRepository(rdb.Client(), log)
	}

	if opts.Geolocation {
		if cfg.Provider.BaseURL != "" {
			d.Provider = ipgeolocation.NewClient(&cfg.Provider, log)
		}
		if cfg.MaxMind.CityDBPath != "" {
			reader, err := maxmind.Open(&cfg.MaxMind, log)
			if err != nil {
				// fallback не обязателен: работаем только с провайдером
				log.Warn("MaxMind database unavailable, fallback disabled", zap.Error(err))
			} else {
				d.MaxMind = reader
			}
		}
		if d.Provider == nil && d.MaxMind == nil {
			d.Close()
			return nil, fmt.Errorf("no geolocation source available")
		}
	}

	return d, nil
}

// Fallback возвращает MaxMind как GeolocationRepository или nil-интерфейс
func (d *Dependencies) Fallback() repository.GeolocationRepository {
	if d.MaxMind == nil {
		return nil
	}
	return d.MaxMind
}

// VisitorConfig переносит настройки радиуса и уведомлений из конфигурации
func VisitorConfig(cfg *config.Config) usecase.VisitorConfig {
	return usecase.VisitorConfig{
		LookupCacheTTL:     cfg.Cache.LookupCacheTTL,
		AxisOrder:          cfg.Provider.AxisOrder,
		Lenient:            cfg.Radius.Lenient,
		SuppressForHosting: cfg.Radius.SuppressForHosting,
		HostingOrgPatterns: cfg.Radius.HostingOrgPatterns,
		NotifyEnabled:      cfg.Notify.Enabled,
		NotifyBots:         cfg.Notify.NotifyBots,
	}
}

// VisitorUseCase собирает VisitorUseCase поверх открытых зависимостей
func (d *Dependencies) VisitorUseCase(cfg *config.Config) *usecase.VisitorUseCase {
	return usecase.NewVisitorUseCase(
		d.Provider,
		d.Fallback(),
		d.CacheRepo,
		d.VisitRepo,
		d.StreamRepo,
		VisitorConfig(cfg),
		d.logger,
	)
}

// Close закрывает всё открытое, ошибки только логируются
func (d *Dependencies) Close() {
	if d.MaxMind != nil {
		if err := d.MaxMind.Close(); err != nil {
			d.logger.Error("Failed to close MaxMind reader", zap.Error(err))
		}
		d.MaxMind = nil
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.logger.Error("Failed to close Redis connection", zap.Error(err))
		}
		d.Redis = nil
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			d.logger.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
		d.DB = nil
	}
}
