package repository

import (
	"context"
	"time"

	"github.com/visitor-geolocation/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу; промах - (nil, nil)
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// GetLookup получает закешированный результат геолокации
	GetLookup(ctx context.Context, ip string) (*domain.IPLookup, error)

	// SetLookup сохраняет результат геолокации
	SetLookup(ctx context.Context, lookup *domain.IPLookup, ttl time.Duration) error

	// GetStats получает статистику визитов из кеша
	GetStats(ctx context.Context, key string) (*domain.VisitStats, error)

	// SetStats сохраняет статистику визитов
	SetStats(ctx context.Context, key string, stats *domain.VisitStats, ttl time.Duration) error
}
