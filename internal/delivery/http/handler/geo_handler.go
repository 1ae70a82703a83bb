package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/visitor-geolocation/internal/pkg/errors"
	"github.com/visitor-geolocation/internal/pkg/utils"
	"github.com/visitor-geolocation/internal/pkg/validator"
	"github.com/visitor-geolocation/internal/usecase"
	"github.com/visitor-geolocation/internal/usecase/dto"
)

// GeoHandler - оценка радиуса точности по полигону
type GeoHandler struct {
	geoUC  *usecase.GeoUseCase
	logger *zap.Logger
}

// NewGeoHandler - создание нового GeoHandler
func NewGeoHandler(geoUC *usecase.GeoUseCase, logger *zap.Logger) *GeoHandler {
	return &GeoHandler{
		geoUC:  geoUC,
		logger: logger,
	}
}

// ConfidenceRadius godoc
// @Summary Estimate accuracy radius of a confidence polygon
// @Description Радиус = максимальное расстояние (haversine) от центроида до вершин, км с точностью 2 знака
// @Tags Geo
// @Accept json
// @Produce json
// @Param request body dto.ConfidenceRadiusRequest true "Полигон доверия"
// @Success 200 {object} utils.SuccessResponse{data=dto.ConfidenceRadiusResponse}
// @Failure 400 {object} utils.ErrorResponse "INVALID_POLYGON или INVALID_REQUEST"
// @Router /api/v1/geo/confidence-radius [post]
func (h *GeoHandler) ConfidenceRadius(c *fiber.Ctx) error {
	var req dto.ConfidenceRadiusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"body": err.Error(),
		}))
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.geoUC.ConfidenceRadius(c.UserContext(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp, requestMeta(c))
}
