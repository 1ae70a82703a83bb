package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/domain"
	"github.com/visitor-geolocation/internal/domain/repository"
	"github.com/visitor-geolocation/internal/pkg/metrics"
	"github.com/visitor-geolocation/internal/worker"
)

const (
	defaultBatchSize  = 20
	defaultReadBlock  = 5 * time.Second
	errorBackoff      = time.Second
	retryBackoff      = 2 * time.Second
	workerName        = "visitor-notification"
	consumeStream     = domain.StreamVisitorNotify
	deadLetterStream  = domain.StreamVisitorNotifyDead
	maxDeadLetterText = 1024
)

// Deliverer доставляет событие во все вебхуки (usecase.NotificationUseCase)
type Deliverer interface {
	Deliver(ctx context.Context, event domain.NotificationEvent) error
}

// Config - параметры чтения стрима
type Config struct {
	ConsumerGroup string
	BatchSize     int
	ReadBlock     time.Duration
	// MaxRetries - сколько повторов после первой попытки, потом dead letter
	MaxRetries int
}

// NotificationWorker читает stream:visitor:notify и рассылает уведомления о визитах
type NotificationWorker struct {
	*worker.BaseWorker
	streamRepo repository.StreamRepository
	deliverer  Deliverer
	cfg        Config
	now        func() time.Time
}

// NewNotificationWorker создает новый NotificationWorker
func NewNotificationWorker(
	streamRepo repository.StreamRepository,
	deliverer Deliverer,
	cfg Config,
	logger *zap.Logger,
) *NotificationWorker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.ReadBlock <= 0 {
		cfg.ReadBlock = defaultReadBlock
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &NotificationWorker{
		BaseWorker: worker.NewBaseWorker(workerName, cfg.ConsumerGroup, logger),
		streamRepo: streamRepo,
		deliverer:  deliverer,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Start запускает воркер и блокируется до Stop или отмены контекста
func (w *NotificationWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting NotificationWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.ConsumerName()),
		zap.Int("batch_size", w.cfg.BatchSize),
		zap.Int("max_retries", w.cfg.MaxRetries))

	if err := w.streamRepo.CreateConsumerGroup(ctx, consumeStream, w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil
		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()
		default:
		}

		res, err := w.ProcessBatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("Failed to process batch", zap.Error(err))
			w.Pause(ctx, errorBackoff)
			continue
		}

		// повторы остаются в pending: даём вебхуку время прийти в себя
		if res.Retried > 0 {
			w.Pause(ctx, retryBackoff)
		}
	}
}

// BatchResult - итог одной пачки
type BatchResult struct {
	Delivered  int
	Retried    int
	DeadLetter int
	Malformed  int
}

// ProcessBatch обрабатывает одну пачку: сначала свои pending-сообщения, иначе новые.
func (w *NotificationWorker) ProcessBatch(ctx context.Context) (BatchResult, error) {
	var res BatchResult

	messages, err := w.streamRepo.ReadPending(ctx, consumeStream, w.ConsumerGroup(), w.ConsumerName(), w.cfg.BatchSize)
	if err != nil {
		return res, fmt.Errorf("failed to read pending: %w", err)
	}
	if len(messages) == 0 {
		messages, err = w.streamRepo.ConsumeBatch(ctx, consumeStream, w.ConsumerGroup(), w.ConsumerName(), w.cfg.BatchSize, w.cfg.ReadBlock)
		if err != nil {
			return res, fmt.Errorf("failed to consume batch: %w", err)
		}
	}
	if len(messages) == 0 {
		return res, nil
	}

	ack := make([]string, 0, len(messages))
	for _, msg := range messages {
		switch w.handle(ctx, msg) {
		case outcomeDelivered:
			res.Delivered++
			ack = append(ack, msg.ID)
		case outcomeDead:
			res.DeadLetter++
			ack = append(ack, msg.ID)
		case outcomeMalformed:
			res.Malformed++
			ack = append(ack, msg.ID)
		case outcomeRetry:
			res.Retried++
		}
	}

	if len(ack) > 0 {
		if err := w.streamRepo.AckMessages(ctx, consumeStream, w.ConsumerGroup(), ack); err != nil {
			// не критично: сообщения будут доставлены повторно
			w.Logger().Error("Failed to ack messages", zap.Error(err))
		}
	}

	w.Logger().Debug("Batch processed",
		zap.Int("delivered", res.Delivered),
		zap.Int("retried", res.Retried),
		zap.Int("dead_letter", res.DeadLetter),
		zap.Int("malformed", res.Malformed))

	return res, nil
}

type outcome int

const (
	outcomeDelivered outcome = iota
	outcomeRetry
	outcomeDead
	outcomeMalformed
)

func (w *NotificationWorker) handle(ctx context.Context, msg domain.StreamMessage) outcome {
	logger := w.Logger().With(zap.String("message_id", msg.ID))

	var event domain.NotificationEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		logger.Warn("Failed to parse message, skipping", zap.Error(err))
		metrics.Notifications.WithLabelValues("malformed").Inc()
		return outcomeMalformed
	}

	err := w.deliverer.Deliver(ctx, event)
	if err == nil {
		metrics.Notifications.WithLabelValues("delivered").Inc()
		return outcomeDelivered
	}

	attempts := int(msg.DeliveryCount)
	if attempts < 1 {
		attempts = 1
	}

	if !errors.Is(err, domain.ErrWebhookRejected) && attempts <= w.cfg.MaxRetries {
		logger.Warn("Notification delivery failed, will retry",
			zap.Int("attempt", attempts),
			zap.Error(err))
		metrics.Notifications.WithLabelValues("retried").Inc()
		return outcomeRetry
	}

	if dlErr := w.deadLetter(ctx, msg.ID, event, attempts, err); dlErr != nil {
		// без dead letter не подтверждаем: сообщение останется в pending
		logger.Error("Failed to write dead letter", zap.Error(dlErr))
		return outcomeRetry
	}

	logger.Error("Notification moved to dead letter stream",
		zap.String("event_id", event.ID.String()),
		zap.Int("attempts", attempts),
		zap.Error(err))
	metrics.Notifications.WithLabelValues("dead").Inc()
	return outcomeDead
}

func (w *NotificationWorker) deadLetter(ctx context.Context, messageID string, event domain.NotificationEvent, attempts int, cause error) error {
	text := cause.Error()
	if len(text) > maxDeadLetterText {
		text = text[:maxDeadLetterText]
	}

	return w.streamRepo.PublishToStream(ctx, deadLetterStream, domain.DeadLetter{
		MessageID: messageID,
		Event:     event,
		Attempts:  attempts,
		LastError: text,
		FailedAt:  w.now().UTC(),
	})
}
