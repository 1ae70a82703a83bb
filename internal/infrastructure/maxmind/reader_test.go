package maxmind

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/oschwald/geoip2-golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/config"
	"github.com/visitor-geolocation/internal/domain"
)

type fakeCityDB struct {
	records map[string]*geoip2.City
	closed  bool
}

func (f *fakeCityDB) City(ip net.IP) (*geoip2.City, error) {
	if rec, ok := f.records[ip.String()]; ok {
		return rec, nil
	}
	return &geoip2.City{}, nil
}

func (f *fakeCityDB) Close() error {
	f.closed = true
	return nil
}

type fakeASNDB struct {
	err error
}

func (f *fakeASNDB) ASN(ip net.IP) (*geoip2.ASN, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &geoip2.ASN{AutonomousSystemNumber: 3320, AutonomousSystemOrganization: "Deutsche Telekom AG"}, nil
}

func (f *fakeASNDB) Close() error { return nil }

func berlin() *geoip2.City {
	rec := &geoip2.City{}
	rec.Country.IsoCode = "DE"
	rec.Country.Names = map[string]string{"en": "Germany"}
	rec.City.Names = map[string]string{"en": "Berlin"}
	rec.Location.Latitude = 52.5244
	rec.Location.Longitude = 13.4105
	rec.Location.AccuracyRadius = 20
	rec.Location.TimeZone = "Europe/Berlin"
	rec.Postal.Code = "10115"
	return rec
}

func newTestReader(city *fakeCityDB, asn asnDB) *Reader {
	return &Reader{
		city:   city,
		asn:    asn,
		logger: zap.NewNop(),
		now:    func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func TestReader_Lookup(t *testing.T) {
	city := &fakeCityDB{records: map[string]*geoip2.City{"91.0.0.1": berlin()}}

	t.Run("city with asn", func(t *testing.T) {
		r := newTestReader(city, &fakeASNDB{})

		lookup, err := r.Lookup(context.Background(), "91.0.0.1")
		require.NoError(t, err)

		assert.Equal(t, domain.LookupSourceMaxMind, lookup.Source)
		assert.Equal(t, "DE", lookup.Location.CountryCode)
		assert.Equal(t, "Germany", lookup.Location.CountryName)
		assert.Equal(t, "Berlin", lookup.Location.City)
		assert.Equal(t, "Europe/Berlin", lookup.Location.TimeZone)
		require.True(t, lookup.Location.HasCoordinates())
		assert.Equal(t, 52.5244, *lookup.Location.Latitude)
		require.NotNil(t, lookup.AccuracyRadiusKm)
		assert.Equal(t, 20.0, *lookup.AccuracyRadiusKm)
		assert.Equal(t, "AS3320", lookup.Network.ASN)
		assert.Equal(t, "Deutsche Telekom AG", lookup.Network.Organization)
		assert.Empty(t, lookup.ConfidenceArea)
	})

	t.Run("asn failure is not fatal", func(t *testing.T) {
		r := newTestReader(city, &fakeASNDB{err: errors.New("corrupt")})

		lookup, err := r.Lookup(context.Background(), "91.0.0.1")
		require.NoError(t, err)
		assert.Empty(t, lookup.Network.ASN)
	})

	t.Run("unknown address", func(t *testing.T) {
		r := newTestReader(city, nil)

		_, err := r.Lookup(context.Background(), "10.0.0.1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid address", func(t *testing.T) {
		r := newTestReader(city, nil)

		_, err := r.Lookup(context.Background(), "not-an-ip")
		assert.Error(t, err)
	})
}

func TestReader_Close(t *testing.T) {
	city := &fakeCityDB{}
	r := newTestReader(city, nil)

	require.NoError(t, r.Close())
	assert.True(t, city.closed)
}

func TestOpen_MissingPath(t *testing.T) {
	_, err := Open(&config.MaxMindConfig{}, zap.NewNop())
	assert.Error(t, err)

	_, err = Open(&config.MaxMindConfig{CityDBPath: "/nonexistent/GeoLite2-City.mmdb"}, zap.NewNop())
	assert.Error(t, err)
}
