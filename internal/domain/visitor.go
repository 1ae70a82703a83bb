package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Источники результата геолокации
const (
	LookupSourceProvider = "provider"
	LookupSourceMaxMind  = "maxmind"
	LookupSourceCache    = "cache"
)

// Источники радиуса точности
const (
	RadiusSourceConfidenceArea = "confidence_area"
	RadiusSourceProvider       = "provider"
)

// UserAgentInfo - результат разбора User-Agent
type UserAgentInfo struct {
	Raw            string `json:"raw"`
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browser_version,omitempty"`
	OS             string `json:"os"`
	Device         string `json:"device"`
	IsBot          bool   `json:"is_bot"`
}

// LocationInfo - географическая часть ответа провайдера
type LocationInfo struct {
	CountryName string   `json:"country_name,omitempty"`
	CountryCode string   `json:"country_code,omitempty"`
	Region      string   `json:"region,omitempty"`
	City        string   `json:"city,omitempty"`
	PostalCode  string   `json:"postal_code,omitempty"`
	TimeZone    string   `json:"time_zone,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// HasCoordinates - true, если провайдер вернул обе координаты
func (l LocationInfo) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// NetworkInfo - сеть и оператор
type NetworkInfo struct {
	ASN            string `json:"asn,omitempty"`
	Organization   string `json:"organization,omitempty"`
	ISP            string `json:"isp,omitempty"`
	ConnectionType string `json:"connection_type,omitempty"`
	IsHosting      bool   `json:"is_hosting"`
}

// ThreatInfo - признаки анонимизации и угроз
type ThreatInfo struct {
	IsVPN       bool     `json:"is_vpn"`
	IsProxy     bool     `json:"is_proxy"`
	IsTor       bool     `json:"is_tor"`
	IsRelay     bool     `json:"is_relay"`
	IsAbuser    bool     `json:"is_abuser"`
	IsBot       bool     `json:"is_bot"`
	ThreatScore *float64 `json:"threat_score,omitempty"`
}

// Flags возвращает имена выставленных признаков в стабильном порядке
func (t ThreatInfo) Flags() []string {
	flags := make([]string, 0, 6)
	for _, f := range []struct {
		set  bool
		name string
	}{
		{t.IsVPN, "vpn"},
		{t.IsProxy, "proxy"},
		{t.IsTor, "tor"},
		{t.IsRelay, "relay"},
		{t.IsAbuser, "abuser"},
		{t.IsBot, "bot"},
	} {
		if f.set {
			flags = append(flags, f.name)
		}
	}
	return flags
}

// IPLookup - нормализованный результат геолокации IP. Кешируется целиком в JSON.
type IPLookup struct {
	IP               string          `json:"ip"`
	Source           string          `json:"source"`
	Location         LocationInfo    `json:"location"`
	Network          NetworkInfo     `json:"network"`
	Threat           ThreatInfo      `json:"threat"`
	ConfidenceArea   json.RawMessage `json:"confidence_area,omitempty"`
	AccuracyRadiusKm *float64        `json:"accuracy_radius_km,omitempty"`
	FetchedAt        time.Time       `json:"fetched_at"`
}

// AccuracyRadius - итоговый радиус точности, который видит клиент
type AccuracyRadius struct {
	RadiusKm      float64   `json:"radius_km"`
	Source        string    `json:"source"`
	Centroid      *GeoPoint `json:"centroid,omitempty"`
	PointsUsed    int       `json:"points_used,omitempty"`
	PointsSkipped int       `json:"points_skipped,omitempty"`
}

// Visit - один обработанный запрос посетителя
type Visit struct {
	ID               uuid.UUID       `json:"id"`
	IP               string          `json:"ip"`
	Path             string          `json:"path,omitempty"`
	Referer          string          `json:"referer,omitempty"`
	UserAgent        UserAgentInfo   `json:"user_agent"`
	Lookup           *IPLookup       `json:"lookup,omitempty"`
	LookupError      string          `json:"lookup_error,omitempty"`
	AccuracyRadius   *AccuracyRadius `json:"accuracy_radius,omitempty"`
	RadiusSuppressed bool            `json:"radius_suppressed,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// CountryCount - строка топа стран
type CountryCount struct {
	CountryCode string `json:"country_code" db:"country_code"`
	Visits      int    `json:"visits" db:"visits"`
}

// VisitStats - агрегаты по журналу визитов
type VisitStats struct {
	Since        time.Time      `json:"since"`
	TotalVisits  int            `json:"total_visits"`
	UniqueIPs    int            `json:"unique_ips"`
	BotVisits    int            `json:"bot_visits"`
	HostingHits  int            `json:"hosting_visits"`
	TopCountries []CountryCount `json:"top_countries"`
	GeneratedAt  time.Time      `json:"generated_at"`
}
