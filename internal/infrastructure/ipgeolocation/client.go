package ipgeolocation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/visitor-geolocation/internal/config"
	"github.com/visitor-geolocation/internal/domain"
	"github.com/visitor-geolocation/internal/domain/repository"
	"github.com/visitor-geolocation/internal/pkg/metrics"
	"go.uber.org/zap"
)

// maxBodySize ограничивает чтение ответа провайдера
const maxBodySize = 1 << 20

type client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	fields     string
	userAgent  string
	logger     *zap.Logger
	now        func() time.Time
}

// NewClient создает клиент HTTP API геолокации по IP
func NewClient(cfg *config.ProviderConfig, logger *zap.Logger) repository.GeolocationRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		fields:    cfg.Fields,
		userAgent: cfg.UserAgent,
		logger:    logger,
		now:       time.Now,
	}
}

func (c *client) Name() string {
	return domain.LookupSourceProvider
}

// Lookup запрашивает провайдера и нормализует ответ
func (c *client) Lookup(ctx context.Context, ip string) (*domain.IPLookup, error) {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(ip))

	query := url.Values{}
	if c.apiKey != "" {
		query.Set("apiKey", c.apiKey)
	}
	if c.fields != "" {
		query.Set("fields", c.fields)
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	c.logger.Debug("Calling geolocation provider", zap.String("ip", ip))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := c.now()
	resp, err := c.httpClient.Do(req)
	metrics.ProviderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Warn("Geolocation provider request failed", zap.String("ip", ip), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Geolocation provider returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", truncate(string(body), 256)))
		return nil, fmt.Errorf("geolocation provider error: status %d", resp.StatusCode)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	lookup := normalize(payload, ip)
	lookup.FetchedAt = c.now().UTC()

	c.logger.Debug("Geolocation provider call successful",
		zap.String("ip", ip),
		zap.String("country", lookup.Location.CountryCode),
		zap.Bool("has_confidence_area", len(lookup.ConfidenceArea) > 0))

	return lookup, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
