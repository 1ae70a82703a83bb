package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/domain"
	"github.com/visitor-geolocation/internal/domain/repository"
)

// NotificationUseCase доставляет событие визита во все настроенные вебхуки
type NotificationUseCase struct {
	targets   []domain.WebhookTarget
	formatter *NotificationFormatter
	sender    repository.WebhookRepository
	logger    *zap.Logger
}

// NewNotificationUseCase создает новый экземпляр NotificationUseCase
func NewNotificationUseCase(
	targets []domain.WebhookTarget,
	formatter *NotificationFormatter,
	sender repository.WebhookRepository,
	logger *zap.Logger,
) *NotificationUseCase {
	return &NotificationUseCase{
		targets:   targets,
		formatter: formatter,
		sender:    sender,
		logger:    logger,
	}
}

// Deliver отправляет событие во все цели.
// Если все неудачи - отказы вебхуков, ошибка оборачивает domain.ErrWebhookRejected и повтор не нужен.
func (uc *NotificationUseCase) Deliver(ctx context.Context, event domain.NotificationEvent) error {
	if len(uc.targets) == 0 {
		uc.logger.Debug("No webhook targets configured, dropping notification",
			zap.String("event_id", event.ID.String()))
		return nil
	}

	var (
		errs      []error
		retryable bool
	)
	for _, target := range uc.targets {
		payload, err := uc.formatter.Format(event, target.Format)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %v", domain.ErrWebhookRejected, err))
			continue
		}

		if err := uc.sender.Send(ctx, target, payload); err != nil {
			uc.logger.Warn("Webhook delivery failed",
				zap.String("event_id", event.ID.String()),
				zap.String("format", target.Format),
				zap.Error(err))
			if !errors.Is(err, domain.ErrWebhookRejected) {
				retryable = true
			}
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return nil
	}

	joined := errors.Join(errs...)
	if retryable {
		// %v: постоянные отказы среди ошибок не должны отменять повтор
		return fmt.Errorf("webhook delivery failed: %v", joined)
	}
	return fmt.Errorf("%w: %v", domain.ErrWebhookRejected, joined)
}
