package repository

import (
	"context"

	"github.com/visitor-geolocation/internal/domain"
)

// WebhookRepository отправляет готовый payload в чат-вебхук
type WebhookRepository interface {
	Send(ctx context.Context, target domain.WebhookTarget, payload []byte) error
}
