package http

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/config"
	"github.com/visitor-geolocation/internal/delivery/http/handler"
	"github.com/visitor-geolocation/internal/delivery/http/middleware"
	apperrors "github.com/visitor-geolocation/internal/pkg/errors"
	"github.com/visitor-geolocation/internal/pkg/metrics"
	"github.com/visitor-geolocation/internal/pkg/utils"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	visitorHandler *handler.VisitorHandler
	geoHandler     *handler.GeoHandler
	statsHandler   *handler.StatsHandler
	healthHandler  *handler.HealthHandler
}

// NewServer - создание нового HTTP сервера. statsHandler может быть nil, если БД отключена.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	visitorHandler *handler.VisitorHandler,
	geoHandler *handler.GeoHandler,
	statsHandler *handler.StatsHandler,
	healthHandler *handler.HealthHandler,
) *Server {
	readTimeout := cfg.Server.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := cfg.Server.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}

	app := fiber.New(fiber.Config{
		AppName:      "Visitor Geolocation",
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:            app,
		config:         cfg,
		logger:         logger,
		visitorHandler: visitorHandler,
		geoHandler:     geoHandler,
		statsHandler:   statsHandler,
		healthHandler:  healthHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.RequestID())
	s.app.Use(metrics.Middleware())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSAllowOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	s.app.Get("/metrics", metrics.Handler())
	s.app.Get("/health", s.healthHandler.Health)
	s.app.Get("/ready", s.healthHandler.Ready)

	api := s.app.Group("/api/v1")

	// Visitor routes
	api.Get("/visitor", s.visitorHandler.GetVisitor)
	api.Get("/lookup/:ip", s.visitorHandler.LookupIP)

	// Geo routes
	api.Post("/geo/confidence-radius", s.geoHandler.ConfidenceRadius)

	// Visit log & stats
	if s.statsHandler != nil {
		api.Get("/visits/recent", s.statsHandler.ListRecentVisits)
		api.Get("/stats", s.statsHandler.GetStatistics)
	}
}

// App - доступ к fiber.App для тестов
func (s *Server) App() *fiber.App {
	return s.app
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок, ответ в формате utils.ErrorResponse
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if stderrors.As(err, &fiberErr) {
			requestID, _ := c.Locals("requestid").(string)
			if fiberErr.Code >= fiber.StatusInternalServerError {
				logger.Error("HTTP Error",
					zap.String("path", c.Path()),
					zap.Int("status", fiberErr.Code),
					zap.Error(err),
				)
			}
			return c.Status(fiberErr.Code).JSON(utils.ErrorResponse{
				Error:     apperrors.New(httpErrorCode(fiberErr.Code), fiberErr.Message, fiberErr.Code),
				RequestID: requestID,
			})
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return utils.SendError(c, err)
	}
}

func httpErrorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}
