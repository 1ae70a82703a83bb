package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/domain"
	apperrors "github.com/visitor-geolocation/internal/pkg/errors"
	"github.com/visitor-geolocation/internal/usecase"
	"github.com/visitor-geolocation/internal/usecase/dto"
)

func boolPtr(b bool) *bool {
	return &b
}

func TestGeoUseCase_ConfidenceRadius(t *testing.T) {
	uc := usecase.NewGeoUseCase(false, zap.NewNop())

	resp, err := uc.ConfidenceRadius(context.Background(), dto.ConfidenceRadiusRequest{
		Polygon: json.RawMessage(sfArea),
	})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, resp.RadiusKm, 5.0)
	assert.LessOrEqual(t, resp.RadiusKm, 15.0)
	assert.Equal(t, 3, resp.PointsUsed)
	assert.Equal(t, 0, resp.PointsSkipped)
	assert.Equal(t, string(domain.AxisOrderAuto), resp.AxisOrder)
	assert.False(t, resp.Lenient)
}

func TestGeoUseCase_ConfidenceRadius_AxisOrder(t *testing.T) {
	uc := usecase.NewGeoUseCase(false, zap.NewNop())

	resp, err := uc.ConfidenceRadius(context.Background(), dto.ConfidenceRadiusRequest{
		Polygon:   json.RawMessage(`[[13.4, 52.5]]`),
		AxisOrder: "lonlat",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.GeoPoint{Lat: 52.5, Lon: 13.4}, resp.Centroid)
	assert.Equal(t, "lonlat", resp.AxisOrder)

	_, err = uc.ConfidenceRadius(context.Background(), dto.ConfidenceRadiusRequest{
		Polygon:   json.RawMessage(`[[13.4, 52.5]]`),
		AxisOrder: "xy",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)
}

func TestGeoUseCase_ConfidenceRadius_StrictError(t *testing.T) {
	uc := usecase.NewGeoUseCase(false, zap.NewNop())

	_, err := uc.ConfidenceRadius(context.Background(), dto.ConfidenceRadiusRequest{
		Polygon: json.RawMessage(`[[37.0, -122.0], [91.0, 200.0]]`),
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrInvalidPolygon.Code, appErr.Code)
	assert.Equal(t, 1, appErr.Details["index"])
	assert.NotEmpty(t, appErr.Details["reason"])
}

func TestGeoUseCase_ConfidenceRadius_EmptyPolygonHasNoIndex(t *testing.T) {
	uc := usecase.NewGeoUseCase(false, zap.NewNop())

	_, err := uc.ConfidenceRadius(context.Background(), dto.ConfidenceRadiusRequest{
		Polygon: json.RawMessage(`[]`),
	})

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrInvalidPolygon.Code, appErr.Code)
	_, hasIndex := appErr.Details["index"]
	assert.False(t, hasIndex)
}

func TestGeoUseCase_ConfidenceRadius_Lenient(t *testing.T) {
	polygon := json.RawMessage(`[[37.0, -122.0], null, [37.1, -122.0]]`)

	t.Run("default from config", func(t *testing.T) {
		uc := usecase.NewGeoUseCase(true, zap.NewNop())

		resp, err := uc.ConfidenceRadius(context.Background(), dto.ConfidenceRadiusRequest{Polygon: polygon})
		require.NoError(t, err)
		assert.True(t, resp.Lenient)
		assert.Equal(t, 2, resp.PointsUsed)
		assert.Equal(t, 1, resp.PointsSkipped)
	})

	t.Run("request overrides config", func(t *testing.T) {
		uc := usecase.NewGeoUseCase(true, zap.NewNop())

		_, err := uc.ConfidenceRadius(context.Background(), dto.ConfidenceRadiusRequest{
			Polygon: polygon,
			Lenient: boolPtr(false),
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidPolygon)
	})
}
