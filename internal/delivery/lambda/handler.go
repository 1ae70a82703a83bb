// Package lambda - точка входа API Gateway proxy для того же сценария, что и GET /api/v1/visitor
package lambda

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	apperrors "github.com/visitor-geolocation/internal/pkg/errors"
	"github.com/visitor-geolocation/internal/pkg/clientip"
	"github.com/visitor-geolocation/internal/pkg/utils"
	"github.com/visitor-geolocation/internal/usecase"
	"github.com/visitor-geolocation/internal/usecase/dto"
)

// Handler обрабатывает события API Gateway (REST proxy integration)
type Handler struct {
	visitorUC    *usecase.VisitorUseCase
	allowOrigins string
	logger       *zap.Logger
}

// NewHandler создает новый Handler. allowOrigins уходит в Access-Control-Allow-Origin.
func NewHandler(visitorUC *usecase.VisitorUseCase, allowOrigins string, logger *zap.Logger) *Handler {
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	return &Handler{
		visitorUC:    visitorUC,
		allowOrigins: allowOrigins,
		logger:       logger,
	}
}

// Handle - функция для lambda.Start
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := req.RequestContext.RequestID

	if req.HTTPMethod == http.MethodOptions {
		return h.respond(http.StatusNoContent, nil, req), nil
	}

	headers := canonicalHeaders(req)
	get := func(name string) string { return headers[strings.ToLower(name)] }

	visitorReq := dto.VisitorRequest{
		IP:        clientip.FromHeaders(get, req.RequestContext.Identity.SourceIP),
		UserAgent: get("User-Agent"),
		Referer:   get("Referer"),
		Path:      req.QueryStringParameters["path"],
	}
	if visitorReq.UserAgent == "" {
		visitorReq.UserAgent = req.RequestContext.Identity.UserAgent
	}

	resp, err := h.visitorUC.LookupVisitor(ctx, visitorReq)
	if err != nil {
		var appErr *apperrors.AppError
		if !stderrors.As(err, &appErr) {
			h.logger.Error("Visitor lookup failed", zap.String("request_id", requestID), zap.Error(err))
			appErr = apperrors.ErrInternalServer
		}
		return h.respond(appErr.StatusCode, utils.ErrorResponse{Error: appErr, RequestID: requestID}, req), nil
	}

	var meta *utils.Meta
	if requestID != "" {
		meta = &utils.Meta{RequestID: requestID}
	}
	return h.respond(http.StatusOK, utils.SuccessResponse{Data: resp, Meta: meta}, req), nil
}

func (h *Handler) respond(status int, body interface{}, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	resp := events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":                 "application/json",
			"Access-Control-Allow-Origin":  h.allowOrigin(req),
			"Access-Control-Allow-Methods": "GET,OPTIONS",
			"Access-Control-Allow-Headers": "Content-Type,Accept,Authorization,X-Request-ID",
		},
	}
	if body == nil {
		return resp
	}

	data, err := json.Marshal(body)
	if err != nil {
		h.logger.Error("Failed to marshal response", zap.Error(err))
		resp.StatusCode = http.StatusInternalServerError
		data = []byte(`{"error":{"code":"INTERNAL_SERVER_ERROR","message":"Internal server error"}}`)
	}
	resp.Body = string(data)
	return resp
}

// allowOrigin отдаёт Origin запроса, если он в списке разрешённых
func (h *Handler) allowOrigin(req events.APIGatewayProxyRequest) string {
	if h.allowOrigins == "*" {
		return "*"
	}
	origin := canonicalHeaders(req)["origin"]
	for _, o := range strings.Split(h.allowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" && o == origin {
			return origin
		}
	}
	return strings.TrimSpace(strings.Split(h.allowOrigins, ",")[0])
}

// canonicalHeaders - заголовки в нижнем регистре; multi-value берёт первое значение
func canonicalHeaders(req events.APIGatewayProxyRequest) map[string]string {
	out := make(map[string]string, len(req.Headers)+len(req.MultiValueHeaders))
	for k, values := range req.MultiValueHeaders {
		if len(values) > 0 {
			out[strings.ToLower(k)] = values[0]
		}
	}
	for k, v := range req.Headers {
		out[strings.ToLower(k)] = v
	}
	return out
}
