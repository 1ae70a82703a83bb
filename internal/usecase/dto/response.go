package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/visitor-geolocation/internal/domain"
)

// VisitorResponse - ответ на запрос геолокации посетителя
type VisitorResponse struct {
	VisitID          *uuid.UUID             `json:"visit_id,omitempty"`
	IP               string                 `json:"ip"`
	UserAgent        domain.UserAgentInfo   `json:"user_agent"`
	Location         *domain.LocationInfo   `json:"location,omitempty"`
	Network          *domain.NetworkInfo    `json:"network,omitempty"`
	Threat           *domain.ThreatInfo     `json:"threat,omitempty"`
	ThreatFlags      []string               `json:"threat_flags"`
	AccuracyRadius   *domain.AccuracyRadius `json:"accuracy_radius,omitempty"`
	RadiusSuppressed bool                   `json:"radius_suppressed,omitempty"`
	LookupSource     string                 `json:"lookup_source,omitempty"`
	Cached           bool                   `json:"cached,omitempty"`
	LookupError      string                 `json:"lookup_error,omitempty"`
	Timestamp        time.Time              `json:"timestamp"`
}

// ConfidenceRadiusResponse - результат оценки радиуса
type ConfidenceRadiusResponse struct {
	RadiusKm      float64         `json:"radius_km"`
	Centroid      domain.GeoPoint `json:"centroid"`
	PointsUsed    int             `json:"points_used"`
	PointsSkipped int             `json:"points_skipped"`
	AxisOrder     string          `json:"axis_order"`
	Lenient       bool            `json:"lenient"`
}

// RecentVisitsResponse - последние визиты
type RecentVisitsResponse struct {
	Visits []domain.Visit `json:"visits"`
	Total  int            `json:"total"`
}
