package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/config"
	"github.com/visitor-geolocation/internal/domain"
)

func testConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Enabled: false},
		Redis:    config.RedisConfig{Enabled: false},
		Cache:    config.CacheConfig{LookupCacheTTL: time.Hour},
		Provider: config.ProviderConfig{
			BaseURL:   "https://geo.example.test/v2/ipgeo",
			Timeout:   time.Second,
			AxisOrder: domain.AxisOrderLonLat,
		},
		Radius: config.RadiusConfig{
			Lenient:            true,
			SuppressForHosting: true,
			HostingOrgPatterns: []string{"amazon"},
		},
		Notify: config.NotifyConfig{Enabled: true, NotifyBots: true},
	}
}

func TestOpen_ProviderOnly(t *testing.T) {
	cfg := testConfig()

	d, err := Open(context.Background(), cfg, Options{Database: true, Redis: true, Geolocation: true}, zap.NewNop())
	require.NoError(t, err)
	defer d.Close()

	assert.Nil(t, d.DB)
	assert.Nil(t, d.Redis)
	assert.Nil(t, d.CacheRepo)
	assert.Nil(t, d.VisitRepo)
	assert.Nil(t, d.StreamRepo)
	require.NotNil(t, d.Provider)
	assert.Equal(t, domain.LookupSourceProvider, d.Provider.Name())

	// nil-указатель не должен превратиться в не-nil интерфейс
	assert.Nil(t, d.Fallback())
	assert.NotNil(t, d.VisitorUseCase(cfg))
}

func TestOpen_NoGeolocationSource(t *testing.T) {
	cfg := testConfig()
	cfg.Provider.BaseURL = ""
	cfg.MaxMind.CityDBPath = "/nonexistent/GeoLite2-City.mmdb"

	_, err := Open(context.Background(), cfg, Options{Geolocation: true}, zap.NewNop())
	assert.ErrorContains(t, err, "no geolocation source")
}

func TestVisitorConfig(t *testing.T) {
	vc := VisitorConfig(testConfig())

	assert.Equal(t, time.Hour, vc.LookupCacheTTL)
	assert.Equal(t, domain.AxisOrderLonLat, vc.AxisOrder)
	assert.True(t, vc.Lenient)
	assert.True(t, vc.SuppressForHosting)
	assert.Equal(t, []string{"amazon"}, vc.HostingOrgPatterns)
	assert.True(t, vc.NotifyEnabled)
	assert.True(t, vc.NotifyBots)
}
