package repository

import (
	"context"
	"time"

	"github.com/visitor-geolocation/internal/domain"
)

// VisitRepository - журнал визитов
type VisitRepository interface {
	Create(ctx context.Context, visit *domain.Visit) error
	ListRecent(ctx context.Context, limit int) ([]domain.Visit, error)
	Stats(ctx context.Context, since time.Time, topN int) (*domain.VisitStats, error)
}
