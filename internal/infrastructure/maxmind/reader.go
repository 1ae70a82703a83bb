package maxmind

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/config"
	"github.com/visitor-geolocation/internal/domain"
	"github.com/visitor-geolocation/internal/domain/repository"
)

var _ repository.GeolocationRepository = (*Reader)(nil)

// ErrNotFound - адреса нет в базе
var ErrNotFound = errors.New("ip not found in maxmind database")

type cityDB interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

type asnDB interface {
	ASN(ip net.IP) (*geoip2.ASN, error)
	Close() error
}

// Reader - офлайн-источник геолокации на базах GeoLite2/GeoIP2
type Reader struct {
	city   cityDB
	asn    asnDB
	logger *zap.Logger
	now    func() time.Time
}

// Open открывает City-базу и, если задана, ASN-базу
func Open(cfg *config.MaxMindConfig, logger *zap.Logger) (*Reader, error) {
	if cfg.CityDBPath == "" {
		return nil, fmt.Errorf("maxmind city database path is empty")
	}

	city, err := geoip2.Open(cfg.CityDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open city database: %w", err)
	}

	r := &Reader{city: city, logger: logger, now: time.Now}

	if cfg.ASNDBPath != "" {
		asn, err := geoip2.Open(cfg.ASNDBPath)
		if err != nil {
			city.Close()
			return nil, fmt.Errorf("failed to open asn database: %w", err)
		}
		r.asn = asn
	}

	logger.Info("MaxMind databases opened",
		zap.String("city", cfg.CityDBPath),
		zap.String("asn", cfg.ASNDBPath))

	return r, nil
}

func (r *Reader) Name() string {
	return domain.LookupSourceMaxMind
}

// Lookup ищет IP в локальной базе. AccuracyRadius базы уже в км.
func (r *Reader) Lookup(ctx context.Context, ip string) (*domain.IPLookup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, fmt.Errorf("invalid ip %q", ip)
	}

	record, err := r.city.City(parsed)
	if err != nil {
		return nil, fmt.Errorf("city lookup failed: %w", err)
	}
	if record.Country.IsoCode == "" && record.Location.Latitude == 0 && record.Location.Longitude == 0 {
		return nil, ErrNotFound
	}

	lat, lon := record.Location.Latitude, record.Location.Longitude
	lookup := &domain.IPLookup{
		IP:     ip,
		Source: domain.LookupSourceMaxMind,
		Location: domain.LocationInfo{
			CountryName: record.Country.Names["en"],
			CountryCode: record.Country.IsoCode,
			City:        record.City.Names["en"],
			PostalCode:  record.Postal.Code,
			TimeZone:    record.Location.TimeZone,
			Latitude:    &lat,
			Longitude:   &lon,
		},
		Threat: domain.ThreatInfo{
			IsProxy: record.Traits.IsAnonymousProxy,
		},
		FetchedAt: r.now().UTC(),
	}
	if len(record.Subdivisions) > 0 {
		lookup.Location.Region = record.Subdivisions[0].Names["en"]
	}
	if record.Location.AccuracyRadius > 0 {
		radius := float64(record.Location.AccuracyRadius)
		lookup.AccuracyRadiusKm = &radius
	}

	if r.asn != nil {
		asn, err := r.asn.ASN(parsed)
		if err != nil {
			r.logger.Debug("ASN lookup failed", zap.String("ip", ip), zap.Error(err))
		} else if asn.AutonomousSystemNumber != 0 {
			lookup.Network.ASN = fmt.Sprintf("AS%d", asn.AutonomousSystemNumber)
			lookup.Network.Organization = asn.AutonomousSystemOrganization
		}
	}

	return lookup, nil
}

// Close закрывает открытые базы
func (r *Reader) Close() error {
	var errs []error
	if r.city != nil {
		errs = append(errs, r.city.Close())
	}
	if r.asn != nil {
		errs = append(errs, r.asn.Close())
	}
	return errors.Join(errs...)
}
