package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/domain"
	"github.com/visitor-geolocation/internal/domain/repository"
	"github.com/visitor-geolocation/internal/pkg/clientip"
	apperrors "github.com/visitor-geolocation/internal/pkg/errors"
	"github.com/visitor-geolocation/internal/pkg/georadius"
	"github.com/visitor-geolocation/internal/pkg/metrics"
	"github.com/visitor-geolocation/internal/pkg/useragent"
	"github.com/visitor-geolocation/internal/pkg/utils"
	"github.com/visitor-geolocation/internal/usecase/dto"
)

// errPrivateAddress - адрес не маршрутизируется, внешние источники не спрашиваем
var errPrivateAddress = errors.New("address is not publicly routable")

// VisitorConfig - настройки обработки посетителя
type VisitorConfig struct {
	LookupCacheTTL     time.Duration
	AxisOrder          domain.AxisOrder
	Lenient            bool
	SuppressForHosting bool
	HostingOrgPatterns []string
	NotifyEnabled      bool
	NotifyBots         bool
}

// VisitorUseCase геолоцирует посетителя, записывает визит и публикует уведомление.
// Любая из зависимостей, кроме логгера, может быть nil - шаг тогда пропускается.
type VisitorUseCase struct {
	provider   repository.GeolocationRepository
	fallback   repository.GeolocationRepository
	cacheRepo  repository.CacheRepository
	visitRepo  repository.VisitRepository
	streamRepo repository.StreamRepository
	cfg        VisitorConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewVisitorUseCase создает новый экземпляр VisitorUseCase
func NewVisitorUseCase(
	provider repository.GeolocationRepository,
	fallback repository.GeolocationRepository,
	cacheRepo repository.CacheRepository,
	visitRepo repository.VisitRepository,
	streamRepo repository.StreamRepository,
	cfg VisitorConfig,
	logger *zap.Logger,
) *VisitorUseCase {
	patterns := make([]string, 0, len(cfg.HostingOrgPatterns))
	for _, p := range cfg.HostingOrgPatterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			patterns = append(patterns, p)
		}
	}
	cfg.HostingOrgPatterns = patterns

	return &VisitorUseCase{
		provider:   provider,
		fallback:   fallback,
		cacheRepo:  cacheRepo,
		visitRepo:  visitRepo,
		streamRepo: streamRepo,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// LookupVisitor обрабатывает запрос посетителя целиком.
// Ошибкой заканчивается только невалидный IP: сбои источников отражаются в LookupError.
func (uc *VisitorUseCase) LookupVisitor(ctx context.Context, req dto.VisitorRequest) (*dto.VisitorResponse, error) {
	ip, ok := clientip.Normalize(req.IP)
	if !ok {
		return nil, apperrors.ErrInvalidIP
	}

	ua := useragent.Parse(req.UserAgent)
	now := uc.now().UTC()

	visit := &domain.Visit{
		ID:        uuid.New(),
		IP:        ip,
		Path:      req.Path,
		Referer:   req.Referer,
		UserAgent: ua,
		CreatedAt: now,
	}

	lookup, cached, err := uc.resolve(ctx, ip)
	if err != nil {
		visit.LookupError = err.Error()
	} else {
		visit.Lookup = lookup
		visit.AccuracyRadius, visit.RadiusSuppressed = uc.accuracyRadius(lookup)
	}

	uc.recordVisit(ctx, visit)
	uc.notify(ctx, visit)

	return newVisitorResponse(visit, cached), nil
}

// LookupIP геолоцирует произвольный IP без записи визита и уведомления
func (uc *VisitorUseCase) LookupIP(ctx context.Context, rawIP string) (*dto.VisitorResponse, error) {
	ip, ok := clientip.Normalize(rawIP)
	if !ok {
		return nil, apperrors.ErrInvalidIP
	}

	lookup, cached, err := uc.resolve(ctx, ip)
	if err != nil {
		return nil, apperrors.ErrLookupFailed.WithDetails(map[string]interface{}{"reason": err.Error()})
	}

	visit := &domain.Visit{IP: ip, Lookup: lookup, CreatedAt: uc.now().UTC()}
	visit.AccuracyRadius, visit.RadiusSuppressed = uc.accuracyRadius(lookup)

	return newVisitorResponse(visit, cached), nil
}

// resolve: кеш -> HTTP-провайдер -> MaxMind
func (uc *VisitorUseCase) resolve(ctx context.Context, ip string) (*domain.IPLookup, bool, error) {
	if !clientip.IsPublic(ip) {
		metrics.Lookups.WithLabelValues("none").Inc()
		return nil, false, errPrivateAddress
	}

	if uc.cacheRepo != nil {
		cachedLookup, err := uc.cacheRepo.GetLookup(ctx, ip)
		if err != nil {
			uc.logger.Warn("Failed to get lookup from cache", zap.String("ip", ip), zap.Error(err))
		} else if cachedLookup != nil {
			metrics.Lookups.WithLabelValues(domain.LookupSourceCache).Inc()
			return cachedLookup, true, nil
		}
	}

	var errs []error

	if uc.provider != nil {
		lookup, err := uc.provider.Lookup(ctx, ip)
		if err == nil {
			metrics.Lookups.WithLabelValues(uc.provider.Name()).Inc()
			uc.cacheLookup(ctx, lookup)
			return lookup, false, nil
		}
		metrics.LookupErrors.WithLabelValues(uc.provider.Name()).Inc()
		uc.logger.Warn("Geolocation provider failed, trying fallback", zap.String("ip", ip), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", uc.provider.Name(), err))
	}

	if uc.fallback != nil {
		lookup, err := uc.fallback.Lookup(ctx, ip)
		if err == nil {
			metrics.Lookups.WithLabelValues(uc.fallback.Name()).Inc()
			return lookup, false, nil
		}
		metrics.LookupErrors.WithLabelValues(uc.fallback.Name()).Inc()
		uc.logger.Warn("Fallback geolocation failed", zap.String("ip", ip), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", uc.fallback.Name(), err))
	}

	metrics.Lookups.WithLabelValues("none").Inc()
	if len(errs) == 0 {
		return nil, false, errors.New("no geolocation source configured")
	}
	return nil, false, errors.Join(errs...)
}

func (uc *VisitorUseCase) cacheLookup(ctx context.Context, lookup *domain.IPLookup) {
	if uc.cacheRepo == nil || uc.cfg.LookupCacheTTL <= 0 {
		return
	}
	if err := uc.cacheRepo.SetLookup(ctx, lookup, uc.cfg.LookupCacheTTL); err != nil {
		uc.logger.Warn("Failed to cache lookup", zap.String("ip", lookup.IP), zap.Error(err))
	}
}

// accuracyRadius считает радиус по полигону доверия или берёт радиус источника.
// Второе значение - радиус подавлен политикой для хостинг-сетей.
func (uc *VisitorUseCase) accuracyRadius(lookup *domain.IPLookup) (*domain.AccuracyRadius, bool) {
	var radius *domain.AccuracyRadius

	switch {
	case len(lookup.ConfidenceArea) > 0:
		opts := georadius.Options{Lenient: uc.cfg.Lenient}
		if lookup.Source == domain.LookupSourceProvider {
			opts.AxisOrder = uc.cfg.AxisOrder
		}
		res, err := georadius.Estimate(lookup.ConfidenceArea, opts)
		if err != nil {
			metrics.RadiusOutcomes.WithLabelValues("invalid").Inc()
			uc.logger.Warn("Confidence polygon rejected",
				zap.String("ip", lookup.IP),
				zap.Error(err))
			break
		}
		if res.PointsSkipped > 0 {
			uc.logger.Debug("Confidence polygon points skipped",
				zap.String("ip", lookup.IP),
				zap.Int("skipped", res.PointsSkipped))
		}
		centroid := res.Centroid
		radius = &domain.AccuracyRadius{
			RadiusKm:      res.RadiusKm,
			Source:        domain.RadiusSourceConfidenceArea,
			Centroid:      &centroid,
			PointsUsed:    res.PointsUsed,
			PointsSkipped: res.PointsSkipped,
		}
	case lookup.AccuracyRadiusKm != nil && utils.IsFinite(*lookup.AccuracyRadiusKm) && *lookup.AccuracyRadiusKm >= 0:
		radius = &domain.AccuracyRadius{
			RadiusKm: utils.RoundTo(*lookup.AccuracyRadiusKm, 2),
			Source:   domain.RadiusSourceProvider,
		}
	}

	if uc.isHosting(lookup) {
		lookup.Network.IsHosting = true
		if uc.cfg.SuppressForHosting && radius != nil {
			metrics.RadiusOutcomes.WithLabelValues("suppressed").Inc()
			return nil, true
		}
	}

	switch {
	case radius == nil:
		metrics.RadiusOutcomes.WithLabelValues("absent").Inc()
	case radius.Source == domain.RadiusSourceConfidenceArea:
		metrics.RadiusOutcomes.WithLabelValues("estimated").Inc()
		metrics.RadiusKm.Observe(radius.RadiusKm)
	default:
		metrics.RadiusOutcomes.WithLabelValues("provider").Inc()
		metrics.RadiusKm.Observe(radius.RadiusKm)
	}

	return radius, false
}

// isHosting - флаг источника или совпадение org/ISP с паттернами хостингов
func (uc *VisitorUseCase) isHosting(lookup *domain.IPLookup) bool {
	if lookup.Network.IsHosting {
		return true
	}
	org := strings.ToLower(lookup.Network.Organization + " " + lookup.Network.ISP)
	if strings.TrimSpace(org) == "" {
		return false
	}
	for _, p := range uc.cfg.HostingOrgPatterns {
		if strings.Contains(org, p) {
			return true
		}
	}
	return false
}

func (uc *VisitorUseCase) recordVisit(ctx context.Context, visit *domain.Visit) {
	if uc.visitRepo == nil {
		return
	}
	if err := uc.visitRepo.Create(ctx, visit); err != nil {
		uc.logger.Error("Failed to record visit", zap.String("ip", visit.IP), zap.Error(err))
	}
}

func (uc *VisitorUseCase) notify(ctx context.Context, visit *domain.Visit) {
	if !uc.cfg.NotifyEnabled || uc.streamRepo == nil {
		return
	}
	isBot := visit.UserAgent.IsBot || (visit.Lookup != nil && visit.Lookup.Threat.IsBot)
	if isBot && !uc.cfg.NotifyBots {
		uc.logger.Debug("Skipping notification for bot", zap.String("ip", visit.IP))
		return
	}

	event := domain.NotificationEvent{
		ID:        uuid.New(),
		Visit:     *visit,
		CreatedAt: uc.now().UTC(),
	}
	if err := uc.streamRepo.PublishToStream(ctx, domain.StreamVisitorNotify, event); err != nil {
		uc.logger.Error("Failed to publish notification", zap.String("ip", visit.IP), zap.Error(err))
		return
	}
	metrics.Notifications.WithLabelValues("published").Inc()
}

func newVisitorResponse(visit *domain.Visit, cached bool) *dto.VisitorResponse {
	resp := &dto.VisitorResponse{
		IP:               visit.IP,
		UserAgent:        visit.UserAgent,
		ThreatFlags:      []string{},
		AccuracyRadius:   visit.AccuracyRadius,
		RadiusSuppressed: visit.RadiusSuppressed,
		LookupError:      visit.LookupError,
		Timestamp:        visit.CreatedAt,
	}
	if visit.ID != uuid.Nil {
		id := visit.ID
		resp.VisitID = &id
	}
	if l := visit.Lookup; l != nil {
		resp.Location = &l.Location
		resp.Network = &l.Network
		resp.Threat = &l.Threat
		resp.ThreatFlags = l.Threat.Flags()
		resp.LookupSource = l.Source
		resp.Cached = cached
	}
	return resp
}
