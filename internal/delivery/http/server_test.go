package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/config"
	delivery "github.com/visitor-geolocation/internal/delivery/http"
	"github.com/visitor-geolocation/internal/delivery/http/handler"
	"github.com/visitor-geolocation/internal/domain"
	"github.com/visitor-geolocation/internal/usecase"
)

// ---- fakes ----

type fakeProvider struct {
	lookupFn func(ctx context.Context, ip string) (*domain.IPLookup, error)
}

func (f *fakeProvider) Lookup(ctx context.Context, ip string) (*domain.IPLookup, error) {
	return f.lookupFn(ctx, ip)
}

func (f *fakeProvider) Name() string { return domain.LookupSourceProvider }

type fakeVisitRepo struct {
	created []*domain.Visit
	listFn  func(ctx context.Context, limit int) ([]domain.Visit, error)
	statsFn func(ctx context.Context, since time.Time, topN int) (*domain.VisitStats, error)
}

func (f *fakeVisitRepo) Create(ctx context.Context, visit *domain.Visit) error {
	f.created = append(f.created, visit)
	return nil
}

func (f *fakeVisitRepo) ListRecent(ctx context.Context, limit int) ([]domain.Visit, error) {
	if f.listFn != nil {
		return f.listFn(ctx, limit)
	}
	return nil, nil
}

func (f *fakeVisitRepo) Stats(ctx context.Context, since time.Time, topN int) (*domain.VisitStats, error) {
	if f.statsFn != nil {
		return f.statsFn(ctx, since, topN)
	}
	return &domain.VisitStats{Since: since}, nil
}

type fakeChecker struct{ err error }

func (f fakeChecker) Health(ctx context.Context) error { return f.err }

// ---- helpers ----

func sanJoseLookup(ip string) *domain.IPLookup {
	lat, lon := 37.0333, -121.9667
	return &domain.IPLookup{
		IP:     ip,
		Source: domain.LookupSourceProvider,
		Location: domain.LocationInfo{
			CountryCode: "US",
			City:        "San Jose",
			Latitude:    &lat,
			Longitude:   &lon,
		},
		ConfidenceArea: json.RawMessage(`[[-122.0, 37.0], [-122.0, 37.1], [-121.9, 37.0]]`),
	}
}

type testServer struct {
	server *delivery.Server
	visits *fakeVisitRepo
}

func newTestServer(t *testing.T, provider *fakeProvider, checks map[string]handler.HealthChecker) *testServer {
	t.Helper()
	logger := zap.NewNop()
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080, CORSAllowOrigins: "*"},
	}

	visits := &fakeVisitRepo{}
	visitorUC := usecase.NewVisitorUseCase(provider, nil, nil, visits, nil, usecase.VisitorConfig{
		SuppressForHosting: true,
	}, logger)
	geoUC := usecase.NewGeoUseCase(false, logger)
	statsUC := usecase.NewStatsUseCase(visits, nil, 0, logger)

	srv := delivery.NewServer(cfg, logger,
		handler.NewVisitorHandler(visitorUC, logger),
		handler.NewGeoHandler(geoUC, logger),
		handler.NewStatsHandler(statsUC, logger),
		handler.NewHealthHandler(checks),
	)
	return &testServer{server: srv, visits: visits}
}

func okProvider() *fakeProvider {
	return &fakeProvider{lookupFn: func(ctx context.Context, ip string) (*domain.IPLookup, error) {
		return sanJoseLookup(ip), nil
	}}
}

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

// ---- tests ----

func TestVisitorEndpoint(t *testing.T) {
	ts := newTestServer(t, okProvider(), nil)

	req := httptest.NewRequest("GET", "/api/v1/visitor?path=/pricing", nil)
	req.Header.Set("CF-Connecting-IP", "73.15.20.1")
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0")

	resp, err := ts.server.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	body := decodeBody(t, resp.Body)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "73.15.20.1", data["ip"])
	assert.NotEmpty(t, data["visit_id"])

	radius := data["accuracy_radius"].(map[string]interface{})
	assert.Equal(t, domain.RadiusSourceConfidenceArea, radius["source"])
	assert.InDelta(t, 7.98, radius["radius_km"].(float64), 0.5)

	ua := data["user_agent"].(map[string]interface{})
	assert.Equal(t, "Firefox", ua["browser"])

	meta := body["meta"].(map[string]interface{})
	assert.NotEmpty(t, meta["request_id"])

	require.Len(t, ts.visits.created, 1)
	assert.Equal(t, "/pricing", ts.visits.created[0].Path)
}

func TestVisitorEndpoint_LookupFailureIsNotServerError(t *testing.T) {
	provider := &fakeProvider{lookupFn: func(ctx context.Context, ip string) (*domain.IPLookup, error) {
		return nil, errors.New("provider unavailable")
	}}
	ts := newTestServer(t, provider, nil)

	req := httptest.NewRequest("GET", "/api/v1/visitor", nil)
	req.Header.Set("X-Real-IP", "8.8.8.8")

	resp, err := ts.server.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	data := decodeBody(t, resp.Body)["data"].(map[string]interface{})
	assert.Contains(t, data["lookup_error"], "provider unavailable")
	assert.NotContains(t, data, "location")
}

func TestLookupEndpoint(t *testing.T) {
	ts := newTestServer(t, okProvider(), nil)

	resp, err := ts.server.App().Test(httptest.NewRequest("GET", "/api/v1/lookup/73.15.20.1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	data := decodeBody(t, resp.Body)["data"].(map[string]interface{})
	assert.NotContains(t, data, "visit_id")
	assert.Empty(t, ts.visits.created)

	resp, err = ts.server.App().Test(httptest.NewRequest("GET", "/api/v1/lookup/not-an-ip", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	errBody := decodeBody(t, resp.Body)["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_IP", errBody["code"])
}

func TestConfidenceRadiusEndpoint(t *testing.T) {
	ts := newTestServer(t, okProvider(), nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "valid polygon",
			body:       `{"polygon": [[-122.0, 37.0], [-122.0, 37.1], [-121.9, 37.0]]}`,
			wantStatus: 200,
		},
		{
			name:       "invalid vertex",
			body:       `{"polygon": [[37.0, -122.0], "north"]}`,
			wantStatus: 400,
			wantCode:   "INVALID_POLYGON",
		},
		{
			name:       "missing polygon",
			body:       `{}`,
			wantStatus: 400,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "bad axis order",
			body:       `{"polygon": [[1, 2]], "axis_order": "yx"}`,
			wantStatus: 400,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "malformed body",
			body:       `{"polygon": [`,
			wantStatus: 400,
			wantCode:   "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/geo/confidence-radius", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := ts.server.App().Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decodeBody(t, resp.Body)
			if tt.wantCode == "" {
				data := body["data"].(map[string]interface{})
				assert.InDelta(t, 7.98, data["radius_km"].(float64), 0.5)
				assert.Equal(t, float64(3), data["points_used"])
				return
			}
			assert.Equal(t, tt.wantCode, body["error"].(map[string]interface{})["code"])
		})
	}
}

func TestConfidenceRadiusEndpoint_ErrorCarriesIndex(t *testing.T) {
	ts := newTestServer(t, okProvider(), nil)

	req := httptest.NewRequest("POST", "/api/v1/geo/confidence-radius",
		strings.NewReader(`{"polygon": [[37.0, -122.0], [37.1, -122.0], {"lat": 1}]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.server.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode)

	errBody := decodeBody(t, resp.Body)["error"].(map[string]interface{})
	details := errBody["details"].(map[string]interface{})
	assert.Equal(t, float64(2), details["index"])
}

func TestStatsEndpoints(t *testing.T) {
	ts := newTestServer(t, okProvider(), nil)
	ts.visits.listFn = func(ctx context.Context, limit int) ([]domain.Visit, error) {
		return []domain.Visit{{IP: "1.1.1.1"}}, nil
	}
	ts.visits.statsFn = func(ctx context.Context, since time.Time, topN int) (*domain.VisitStats, error) {
		return &domain.VisitStats{TotalVisits: 3, TopCountries: []domain.CountryCount{{CountryCode: "US", Visits: 3}}}, nil
	}

	resp, err := ts.server.App().Test(httptest.NewRequest("GET", "/api/v1/visits/recent?limit=10", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body := decodeBody(t, resp.Body)
	assert.Equal(t, float64(1), body["meta"].(map[string]interface{})["total"])

	resp, err = ts.server.App().Test(httptest.NewRequest("GET", "/api/v1/visits/recent?limit=100000", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	resp, err = ts.server.App().Test(httptest.NewRequest("GET", "/api/v1/stats?window_hours=12", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	data := decodeBody(t, resp.Body)["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["total_visits"])
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t, okProvider(), map[string]handler.HealthChecker{
		"postgres": fakeChecker{},
		"redis":    fakeChecker{err: errors.New("connection refused")},
		"disabled": nil,
	})

	resp, err := ts.server.App().Test(httptest.NewRequest("GET", "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = ts.server.App().Test(httptest.NewRequest("GET", "/ready", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "ok", checks["postgres"])
	assert.Equal(t, "connection refused", checks["redis"])
	assert.NotContains(t, checks, "disabled")
}

func TestMetricsAndNotFound(t *testing.T) {
	ts := newTestServer(t, okProvider(), nil)

	resp, err := ts.server.App().Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = ts.server.App().Test(httptest.NewRequest("GET", "/api/v1/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	errBody := decodeBody(t, resp.Body)["error"].(map[string]interface{})
	assert.Equal(t, "NOT_FOUND", errBody["code"])
}
