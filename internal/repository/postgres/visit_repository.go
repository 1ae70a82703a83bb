package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/domain"
	"github.com/visitor-geolocation/internal/domain/repository"
)

type visitRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewVisitRepository создает репозиторий журнала визитов
func NewVisitRepository(db *DB) repository.VisitRepository {
	return &visitRepository{
		db:     db,
		logger: db.logger,
	}
}

// visitRow - плоская строка таблицы visits
type visitRow struct {
	ID               uuid.UUID       `db:"id"`
	IP               string          `db:"ip"`
	Path             string          `db:"path"`
	Referer          string          `db:"referer"`
	CountryCode      sql.NullString  `db:"country_code"`
	CountryName      sql.NullString  `db:"country_name"`
	Region           sql.NullString  `db:"region"`
	City             sql.NullString  `db:"city"`
	Lat              sql.NullFloat64 `db:"lat"`
	Lon              sql.NullFloat64 `db:"lon"`
	AccuracyRadiusKm sql.NullFloat64 `db:"accuracy_radius_km"`
	RadiusSource     sql.NullString  `db:"radius_source"`
	RadiusSuppressed bool            `db:"radius_suppressed"`
	LookupSource     sql.NullString  `db:"lookup_source"`
	LookupError      sql.NullString  `db:"lookup_error"`
	ASN              sql.NullString  `db:"asn"`
	Org              sql.NullString  `db:"org"`
	IsHosting        bool            `db:"is_hosting"`
	ThreatFlags      pq.StringArray  `db:"threat_flags"`
	Browser          string          `db:"browser"`
	OS               string          `db:"os"`
	Device           string          `db:"device"`
	UserAgent        string          `db:"user_agent"`
	IsBot            bool            `db:"is_bot"`
	CreatedAt        time.Time       `db:"created_at"`
}

func newVisitRow(v *domain.Visit) visitRow {
	row := visitRow{
		ID:               v.ID,
		IP:               v.IP,
		Path:             v.Path,
		Referer:          v.Referer,
		RadiusSuppressed: v.RadiusSuppressed,
		LookupError:      nullString(v.LookupError),
		ThreatFlags:      pq.StringArray{},
		Browser:          v.UserAgent.Browser,
		OS:               v.UserAgent.OS,
		Device:           v.UserAgent.Device,
		UserAgent:        v.UserAgent.Raw,
		IsBot:            v.UserAgent.IsBot,
		CreatedAt:        v.CreatedAt,
	}

	if l := v.Lookup; l != nil {
		row.CountryCode = nullString(l.Location.CountryCode)
		row.CountryName = nullString(l.Location.CountryName)
		row.Region = nullString(l.Location.Region)
		row.City = nullString(l.Location.City)
		row.Lat = nullFloat(l.Location.Latitude)
		row.Lon = nullFloat(l.Location.Longitude)
		row.LookupSource = nullString(l.Source)
		row.ASN = nullString(l.Network.ASN)
		row.Org = nullString(l.Network.Organization)
		row.IsHosting = l.Network.IsHosting
		row.ThreatFlags = l.Threat.Flags()
	}
	if r := v.AccuracyRadius; r != nil {
		row.AccuracyRadiusKm = sql.NullFloat64{Float64: r.RadiusKm, Valid: true}
		row.RadiusSource = nullString(r.Source)
	}

	return row
}

func (row visitRow) toDomain() domain.Visit {
	v := domain.Visit{
		ID:      row.ID,
		IP:      row.IP,
		Path:    row.Path,
		Referer: row.Referer,
		UserAgent: domain.UserAgentInfo{
			Raw:     row.UserAgent,
			Browser: row.Browser,
			OS:      row.OS,
			Device:  row.Device,
			IsBot:   row.IsBot,
		},
		LookupError:      row.LookupError.String,
		RadiusSuppressed: row.RadiusSuppressed,
		CreatedAt:        row.CreatedAt,
	}

	if row.LookupSource.Valid {
		lookup := &domain.IPLookup{
			IP:     row.IP,
			Source: row.LookupSource.String,
			Location: domain.LocationInfo{
				CountryCode: row.CountryCode.String,
				CountryName: row.CountryName.String,
				Region:      row.Region.String,
				City:        row.City.String,
				Latitude:    floatPtr(row.Lat),
				Longitude:   floatPtr(row.Lon),
			},
			Network: domain.NetworkInfo{
				ASN:          row.ASN.String,
				Organization: row.Org.String,
				IsHosting:    row.IsHosting,
			},
		}
		for _, flag := range row.ThreatFlags {
			switch flag {
			case "vpn":
				lookup.Threat.IsVPN = true
			case "proxy":
				lookup.Threat.IsProxy = true
			case "tor":
				lookup.Threat.IsTor = true
			case "relay":
				lookup.Threat.IsRelay = true
			case "abuser":
				lookup.Threat.IsAbuser = true
			case "bot":
				lookup.Threat.IsBot = true
			}
		}
		v.Lookup = lookup
	}

	if row.AccuracyRadiusKm.Valid {
		v.AccuracyRadius = &domain.AccuracyRadius{
			RadiusKm: row.AccuracyRadiusKm.Float64,
			Source:   row.RadiusSource.String,
		}
	}

	return v
}

// Create сохраняет визит
func (r *visitRepository) Create(ctx context.Context, visit *domain.Visit) error {
	if visit.ID == uuid.Nil {
		visit.ID = uuid.New()
	}
	if visit.CreatedAt.IsZero() {
		visit.CreatedAt = time.Now().UTC()
	}

	row := newVisitRow(visit)

	query := `
		INSERT INTO visits (
			id, ip, path, referer, country_code, country_name, region, city, lat, lon,
			accuracy_radius_km, radius_source, radius_suppressed, lookup_source, lookup_error,
			asn, org, is_hosting, threat_flags, browser, os, device, user_agent, is_bot, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.IP, row.Path, row.Referer, row.CountryCode, row.CountryName, row.Region, row.City, row.Lat, row.Lon,
		row.AccuracyRadiusKm, row.RadiusSource, row.RadiusSuppressed, row.LookupSource, row.LookupError,
		row.ASN, row.Org, row.IsHosting, pq.Array([]string(row.ThreatFlags)), row.Browser, row.OS, row.Device, row.UserAgent, row.IsBot, row.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert visit", zap.String("ip", visit.IP), zap.Error(err))
		return fmt.Errorf("insert visit: %w", err)
	}

	return nil
}

// ListRecent возвращает последние визиты, новые первыми
func (r *visitRepository) ListRecent(ctx context.Context, limit int) ([]domain.Visit, error) {
	query := `
		SELECT
			id, host(ip) AS ip, path, referer, country_code, country_name, region, city, lat, lon,
			accuracy_radius_km, radius_source, radius_suppressed, lookup_source, lookup_error,
			asn, org, is_hosting, threat_flags, browser, os, device, user_agent, is_bot, created_at
		FROM visits
		ORDER BY created_at DESC
		LIMIT $1
	`

	var rows []visitRow
	if err := r.db.SelectContext(ctx, &rows, query, clampLimit(limit)); err != nil {
		r.logger.Error("failed to list visits", zap.Error(err))
		return nil, fmt.Errorf("list visits: %w", err)
	}

	visits := make([]domain.Visit, 0, len(rows))
	for _, row := range rows {
		visits = append(visits, row.toDomain())
	}
	return visits, nil
}

// Stats считает агрегаты по визитам начиная с since
func (r *visitRepository) Stats(ctx context.Context, since time.Time, topN int) (*domain.VisitStats, error) {
	if topN <= 0 {
		topN = DefaultTopCountries
	}

	stats := &domain.VisitStats{
		Since:        since,
		TopCountries: []domain.CountryCount{},
		GeneratedAt:  time.Now().UTC(),
	}

	totalsQuery := `
		SELECT
			COUNT(*) AS total_visits,
			COUNT(DISTINCT ip) AS unique_ips,
			COUNT(*) FILTER (WHERE is_bot) AS bot_visits,
			COUNT(*) FILTER (WHERE is_hosting) AS hosting_visits
		FROM visits
		WHERE created_at >= $1
	`

	var totals struct {
		TotalVisits   int `db:"total_visits"`
		UniqueIPs     int `db:"unique_ips"`
		BotVisits     int `db:"bot_visits"`
		HostingVisits int `db:"hosting_visits"`
	}
	if err := r.db.GetContext(ctx, &totals, totalsQuery, since); err != nil {
		r.logger.Error("failed to get visit totals", zap.Error(err))
		return nil, fmt.Errorf("get visit totals: %w", err)
	}
	stats.TotalVisits = totals.TotalVisits
	stats.UniqueIPs = totals.UniqueIPs
	stats.BotVisits = totals.BotVisits
	stats.HostingHits = totals.HostingVisits

	topQuery := `
		SELECT country_code, COUNT(*) AS visits
		FROM visits
		WHERE created_at >= $1 AND country_code IS NOT NULL
		GROUP BY country_code
		ORDER BY visits DESC, country_code
		LIMIT $2
	`

	if err := r.db.SelectContext(ctx, &stats.TopCountries, topQuery, since, topN); err != nil {
		r.logger.Error("failed to get top countries", zap.Error(err))
		return nil, fmt.Errorf("get top countries: %w", err)
	}

	return stats, nil
}
