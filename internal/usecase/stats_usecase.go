package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/domain"
	"github.com/visitor-geolocation/internal/domain/repository"
	apperrors "github.com/visitor-geolocation/internal/pkg/errors"
	"github.com/visitor-geolocation/internal/usecase/dto"
)

const (
	defaultStatsWindow  = 24 * time.Hour
	defaultTopCountries = 10
)

// StatsUseCase обрабатывает бизнес-логику для журнала визитов и статистики
type StatsUseCase struct {
	visitRepo repository.VisitRepository
	cacheRepo repository.CacheRepository
	cacheTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewStatsUseCase создает новый экземпляр StatsUseCase. cacheRepo может быть nil.
func NewStatsUseCase(
	visitRepo repository.VisitRepository,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *StatsUseCase {
	return &StatsUseCase{
		visitRepo: visitRepo,
		cacheRepo: cacheRepo,
		cacheTTL:  cacheTTL,
		logger:    logger,
		now:       time.Now,
	}
}

func statsCacheKey(window time.Duration) string {
	return fmt.Sprintf("stats:visits:%dh", int(window.Hours()))
}

// GetStatistics возвращает статистику, используя кеш когда возможно
func (uc *StatsUseCase) GetStatistics(ctx context.Context, req dto.StatsRequest) (*domain.VisitStats, error) {
	window := defaultStatsWindow
	if req.WindowHours > 0 {
		window = time.Duration(req.WindowHours) * time.Hour
	}
	key := statsCacheKey(window)

	// 1. Проверяем кеш
	if uc.cacheRepo != nil {
		cached, err := uc.cacheRepo.GetStats(ctx, key)
		if err == nil && cached != nil {
			uc.logger.Debug("Statistics fetched from cache", zap.String("key", key))
			return cached, nil
		}
		if err != nil {
			uc.logger.Warn("Failed to get stats from cache", zap.Error(err))
		}
	}

	// 2. Получаем из БД
	stats, err := uc.visitRepo.Stats(ctx, uc.now().UTC().Add(-window), defaultTopCountries)
	if err != nil {
		uc.logger.Error("Failed to get statistics from db", zap.Error(err))
		return nil, apperrors.ErrDatabaseError
	}

	// 3. Кешируем
	if uc.cacheRepo != nil && uc.cacheTTL > 0 {
		if err := uc.cacheRepo.SetStats(ctx, key, stats, uc.cacheTTL); err != nil {
			uc.logger.Warn("Failed to cache stats", zap.Error(err))
			// Не возвращаем ошибку, т.к. данные уже получены
		}
	}

	return stats, nil
}

// ListRecentVisits возвращает последние визиты
func (uc *StatsUseCase) ListRecentVisits(ctx context.Context, req dto.RecentVisitsRequest) (*dto.RecentVisitsResponse, error) {
	visits, err := uc.visitRepo.ListRecent(ctx, req.Limit)
	if err != nil {
		uc.logger.Error("Failed to list recent visits", zap.Error(err))
		return nil, apperrors.ErrDatabaseError
	}
	if visits == nil {
		visits = []domain.Visit{}
	}

	return &dto.RecentVisitsResponse{
		Visits: visits,
		Total:  len(visits),
	}, nil
}
