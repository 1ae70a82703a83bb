package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/domain"
	"github.com/visitor-geolocation/internal/domain/repository"
)

type sender struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSender создает HTTP-отправителя чат-вебхуков
func NewSender(timeout time.Duration, logger *zap.Logger) repository.WebhookRepository {
	return &sender{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Send отправляет payload. 4xx (кроме 429) оборачивает domain.ErrWebhookRejected.
func (s *sender) Send(ctx context.Context, target domain.WebhookTarget, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", domain.ErrWebhookRejected, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	s.logger.Warn("Webhook returned error",
		zap.String("format", target.Format),
		zap.Int("status_code", resp.StatusCode),
		zap.String("body", string(body)))

	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d", domain.ErrWebhookRejected, resp.StatusCode)
	}
	return fmt.Errorf("webhook error: status %d", resp.StatusCode)
}
