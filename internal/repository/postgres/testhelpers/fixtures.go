package testhelpers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/visitor-geolocation/internal/domain"
	"github.com/visitor-geolocation/internal/domain/repository"
)

// VisitFixture описывает визит для наполнения тестовой базы
type VisitFixture struct {
	IP          string
	CountryCode string
	City        string
	IsBot       bool
	IsHosting   bool
	Flags       domain.ThreatInfo
	RadiusKm    *float64
	Age         time.Duration
}

// Build собирает domain.Visit относительно now
func (f VisitFixture) Build(now time.Time) *domain.Visit {
	v := &domain.Visit{
		ID: uuid.New(),
		IP: f.IP,
		UserAgent: domain.UserAgentInfo{
			Raw:     "fixture",
			Browser: "Firefox",
			OS:      "Linux",
			Device:  "desktop",
			IsBot:   f.IsBot,
		},
		CreatedAt: now.Add(-f.Age).UTC().Truncate(time.Microsecond),
	}
	if f.CountryCode != "" {
		lat, lon := 52.52, 13.405
		v.Lookup = &domain.IPLookup{
			IP:       f.IP,
			Source:   domain.LookupSourceProvider,
			Location: domain.LocationInfo{CountryCode: f.CountryCode, City: f.City, Latitude: &lat, Longitude: &lon},
			Network:  domain.NetworkInfo{ASN: "AS64500", Organization: "Example Net", IsHosting: f.IsHosting},
			Threat:   f.Flags,
		}
	}
	if f.RadiusKm != nil {
		v.AccuracyRadius = &domain.AccuracyRadius{RadiusKm: *f.RadiusKm, Source: domain.RadiusSourceConfidenceArea}
	}
	return v
}

// LoadVisits сохраняет фикстуры через репозиторий
func LoadVisits(ctx context.Context, repo repository.VisitRepository, now time.Time, fixtures []VisitFixture) ([]*domain.Visit, error) {
	visits := make([]*domain.Visit, 0, len(fixtures))
	for i, f := range fixtures {
		v := f.Build(now)
		if err := repo.Create(ctx, v); err != nil {
			return nil, fmt.Errorf("load visit fixture %d: %w", i, err)
		}
		visits = append(visits, v)
	}
	return visits, nil
}
