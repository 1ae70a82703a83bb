package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Stream names
const (
	StreamVisitorNotify     = "stream:visitor:notify"
	StreamVisitorNotifyDead = "stream:visitor:notify:dead"
)

// Форматы чат-вебхуков
const (
	WebhookFormatDiscord = "discord"
	WebhookFormatSlack   = "slack"
)

// ErrWebhookRejected - вебхук отверг payload (4xx кроме 429), повтор бесполезен
var ErrWebhookRejected = errors.New("webhook rejected payload")

// NotificationEvent - событие для доставки в чат-вебхуки
type NotificationEvent struct {
	ID        uuid.UUID `json:"id"`
	Visit     Visit     `json:"visit"`
	CreatedAt time.Time `json:"created_at"`
}

// DeadLetter - событие, которое не удалось доставить после всех попыток
type DeadLetter struct {
	MessageID string            `json:"message_id"`
	Event     NotificationEvent `json:"event"`
	Attempts  int               `json:"attempts"`
	LastError string            `json:"last_error"`
	FailedAt  time.Time         `json:"failed_at"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID            string
	Data          string
	DeliveryCount int64
}

// WebhookTarget - один чат-вебхук для уведомлений
type WebhookTarget struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}
