package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/domain"
	"github.com/visitor-geolocation/internal/domain/repository"
	"github.com/visitor-geolocation/internal/pkg/metrics"
)

const lookupKeyPrefix = "geo:lookup:"

// LookupKey - ключ кеша результата геолокации
func LookupKey(ip string) string {
	return lookupKeyPrefix + ip
}

type cacheRepository struct {
	client redis.Cmdable
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

// GetLookup возвращает закешированный ответ провайдера; промах - (nil, nil)
func (r *cacheRepository) GetLookup(ctx context.Context, ip string) (*domain.IPLookup, error) {
	var lookup domain.IPLookup
	found, err := r.getJSON(ctx, LookupKey(ip), &lookup)
	if err != nil || !found {
		metrics.CacheMisses.WithLabelValues("lookup").Inc()
		return nil, err
	}
	metrics.CacheHits.WithLabelValues("lookup").Inc()
	return &lookup, nil
}

func (r *cacheRepository) SetLookup(ctx context.Context, lookup *domain.IPLookup, ttl time.Duration) error {
	return r.setJSON(ctx, LookupKey(lookup.IP), lookup, ttl)
}

// GetStats получает статистику из кеша
func (r *cacheRepository) GetStats(ctx context.Context, key string) (*domain.VisitStats, error) {
	var stats domain.VisitStats
	found, err := r.getJSON(ctx, key, &stats)
	if err != nil || !found {
		metrics.CacheMisses.WithLabelValues("stats").Inc()
		return nil, err
	}
	metrics.CacheHits.WithLabelValues("stats").Inc()
	return &stats, nil
}

// SetStats сохраняет статистику в кеше
func (r *cacheRepository) SetStats(ctx context.Context, key string, stats *domain.VisitStats, ttl time.Duration) error {
	return r.setJSON(ctx, key, stats, ttl)
}

func (r *cacheRepository) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}

	if err := json.Unmarshal(data, dst); err != nil {
		// битую запись считаем промахом и удаляем
		r.logger.Warn("Failed to unmarshal cached value", zap.String("key", key), zap.Error(err))
		_ = r.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

func (r *cacheRepository) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Error("Failed to marshal cache value", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	return r.Set(ctx, key, data, ttl)
}
