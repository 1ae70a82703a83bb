package repository

import (
	"context"

	"github.com/visitor-geolocation/internal/domain"
)

// GeolocationRepository определяет источник геолокации по IP
type GeolocationRepository interface {
	// Lookup возвращает нормализованные данные по IP
	Lookup(ctx context.Context, ip string) (*domain.IPLookup, error)

	// Name - короткое имя источника для логов и метрик
	Name() string
}
