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

// StatsHandler обрабатывает запросы для журнала визитов и статистики
type StatsHandler struct {
	statsUC *usecase.StatsUseCase
	logger  *zap.Logger
}

// NewStatsHandler создает новый экземпляр StatsHandler
func NewStatsHandler(statsUC *usecase.StatsUseCase, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		statsUC: statsUC,
		logger:  logger,
	}
}

// GetStatistics godoc
// @Summary Get visit statistics
// @Description Агрегаты по журналу визитов за окно: всего, уникальные IP, боты, хостинги, топ стран
// @Tags Statistics
// @Produce json
// @Param window_hours query int false "Окно в часах (по умолчанию 24, максимум 720)"
// @Success 200 {object} utils.SuccessResponse{data=domain.VisitStats}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/stats [get]
func (h *StatsHandler) GetStatistics(c *fiber.Ctx) error {
	var req dto.StatsRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	h.logger.Debug("Handling get statistics request", zap.Int("window_hours", req.WindowHours))

	stats, err := h.statsUC.GetStatistics(c.UserContext(), req)
	if err != nil {
		h.logger.Error("Failed to get statistics", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, stats, requestMeta(c))
}

// ListRecentVisits godoc
// @Summary List recent visits
// @Description Последние визиты, новые первыми
// @Tags Statistics
// @Produce json
// @Param limit query int false "Количество (по умолчанию 50, максимум 500)"
// @Success 200 {object} utils.SuccessResponse{data=dto.RecentVisitsResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/visits/recent [get]
func (h *StatsHandler) ListRecentVisits(c *fiber.Ctx) error {
	var req dto.RecentVisitsRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.statsUC.ListRecentVisits(c.UserContext(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	meta := requestMeta(c)
	if meta == nil {
		meta = &utils.Meta{}
	}
	meta.Total = resp.Total
	meta.Limit = req.Limit
	return utils.SendSuccess(c, resp, meta)
}
