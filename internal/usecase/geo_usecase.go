package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/domain"
	apperrors "github.com/visitor-geolocation/internal/pkg/errors"
	"github.com/visitor-geolocation/internal/pkg/georadius"
	"github.com/visitor-geolocation/internal/usecase/dto"
)

// GeoUseCase - оценка радиуса точности по присланному полигону
type GeoUseCase struct {
	defaultLenient bool
	logger         *zap.Logger
}

// NewGeoUseCase создает новый экземпляр GeoUseCase
func NewGeoUseCase(defaultLenient bool, logger *zap.Logger) *GeoUseCase {
	return &GeoUseCase{
		defaultLenient: defaultLenient,
		logger:         logger,
	}
}

// ConfidenceRadius считает радиус. Неразрешимый полигон - INVALID_POLYGON с индексом точки.
func (uc *GeoUseCase) ConfidenceRadius(ctx context.Context, req dto.ConfidenceRadiusRequest) (*dto.ConfidenceRadiusResponse, error) {
	order, ok := domain.ParseAxisOrder(req.AxisOrder)
	if !ok {
		return nil, apperrors.ErrInvalidRequest.WithDetails(map[string]interface{}{"axis_order": req.AxisOrder})
	}

	lenient := uc.defaultLenient
	if req.Lenient != nil {
		lenient = *req.Lenient
	}

	res, err := georadius.Estimate(req.Polygon, georadius.Options{AxisOrder: order, Lenient: lenient})
	if err != nil {
		var polyErr *georadius.InvalidPolygonError
		if errors.As(err, &polyErr) {
			details := map[string]interface{}{"reason": polyErr.Reason}
			if polyErr.Index >= 0 {
				details["index"] = polyErr.Index
			}
			uc.logger.Debug("Invalid polygon submitted", zap.Error(err))
			return nil, apperrors.ErrInvalidPolygon.WithDetails(details)
		}
		return nil, err
	}

	return &dto.ConfidenceRadiusResponse{
		RadiusKm:      res.RadiusKm,
		Centroid:      res.Centroid,
		PointsUsed:    res.PointsUsed,
		PointsSkipped: res.PointsSkipped,
		AxisOrder:     string(order),
		Lenient:       lenient,
	}, nil
}
