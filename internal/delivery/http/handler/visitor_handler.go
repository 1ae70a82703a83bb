package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/pkg/clientip"
	"github.com/visitor-geolocation/internal/pkg/utils"
	"github.com/visitor-geolocation/internal/usecase"
	"github.com/visitor-geolocation/internal/usecase/dto"
)

// VisitorHandler - геолокация посетителя и произвольного IP
type VisitorHandler struct {
	visitorUC *usecase.VisitorUseCase
	logger    *zap.Logger
}

// NewVisitorHandler - создание нового VisitorHandler
func NewVisitorHandler(visitorUC *usecase.VisitorUseCase, logger *zap.Logger) *VisitorHandler {
	return &VisitorHandler{
		visitorUC: visitorUC,
		logger:    logger,
	}
}

// GetVisitor godoc
// @Summary Geolocate the calling visitor
// @Description Определяет IP клиента по заголовкам прокси, геолоцирует его, считает радиус точности и записывает визит
// @Tags Visitor
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.VisitorResponse}
// @Failure 400 {object} utils.ErrorResponse "IP клиента не определён"
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/visitor [get]
func (h *VisitorHandler) GetVisitor(c *fiber.Ctx) error {
	req := dto.VisitorRequest{
		IP:        clientip.FromHeaders(func(k string) string { return c.Get(k) }, c.Context().RemoteAddr().String()),
		UserAgent: c.Get(fiber.HeaderUserAgent),
		Referer:   c.Get(fiber.HeaderReferer),
		Path:      c.Query("path"),
	}

	resp, err := h.visitorUC.LookupVisitor(c.UserContext(), req)
	if err != nil {
		h.logger.Debug("Visitor lookup rejected", zap.String("ip", req.IP), zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp, requestMeta(c))
}

// LookupIP godoc
// @Summary Geolocate an arbitrary IP
// @Description Геолокация IP без записи визита и без уведомлений
// @Tags Visitor
// @Produce json
// @Param ip path string true "IPv4 или IPv6 адрес"
// @Success 200 {object} utils.SuccessResponse{data=dto.VisitorResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse "Все источники геолокации недоступны"
// @Router /api/v1/lookup/{ip} [get]
func (h *VisitorHandler) LookupIP(c *fiber.Ctx) error {
	resp, err := h.visitorUC.LookupIP(c.UserContext(), c.Params("ip"))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp, requestMeta(c))
}

func requestMeta(c *fiber.Ctx) *utils.Meta {
	requestID, _ := c.Locals("requestid").(string)
	if requestID == "" {
		return nil
	}
	return &utils.Meta{RequestID: requestID}
}
