package ipgeolocation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/visitor-geolocation/internal/domain"
	"github.com/visitor-geolocation/internal/pkg/utils"
)

// Цепочки ключей: провайдеры расходятся в именах полей, берём первое непустое.
var (
	keysCountryName = []string{"location.country_name", "country_name", "country"}
	keysCountryCode = []string{"location.country_code2", "country_code2", "location.country_code", "country_code", "countryCode"}
	keysRegion      = []string{"location.state_prov", "state_prov", "region", "region_name", "regionName"}
	keysCity        = []string{"city", "location.city", "city_name"}
	keysPostal      = []string{"location.zipcode", "zipcode", "postal", "postal_code", "zip"}
	keysTimeZone    = []string{"time_zone.name", "timezone", "time_zone", "location.time_zone"}
	keysLatitude    = []string{"location.latitude", "latitude", "lat"}
	keysLongitude   = []string{"location.longitude", "longitude", "lon", "lng"}
	keysRadius      = []string{"location.accuracy_radius", "accuracy_radius", "accuracy_radius_km"}
	keysConfidence  = []string{"confidenceArea", "location.confidenceArea", "confidence_area", "location.confidence_area"}

	keysASN        = []string{"asn.as_number", "asn.asn", "connection.asn", "asn"}
	keysOrg        = []string{"asn.organization", "organization", "org", "connection.organization"}
	keysISP        = []string{"isp", "asn.isp", "connection.isp"}
	keysConnection = []string{"asn.type", "connection_type", "connection.type"}
	keysHosting    = []string{"security.is_cloud_provider", "is_hosting", "hosting", "is_datacenter", "privacy.hosting"}

	keysVPN         = []string{"security.is_vpn", "is_vpn", "privacy.vpn", "vpn"}
	keysProxy       = []string{"security.is_proxy", "is_proxy", "privacy.proxy", "proxy"}
	keysTor         = []string{"security.is_tor", "is_tor", "privacy.tor", "tor"}
	keysRelay       = []string{"security.is_relay", "is_relay", "privacy.relay", "relay"}
	keysAbuser      = []string{"security.is_known_attacker", "is_abuser", "security.is_abuser", "abuser"}
	keysBot         = []string{"security.is_bot", "is_bot"}
	keysThreatScore = []string{"security.threat_score", "threat_score"}
)

func normalize(payload map[string]any, ip string) *domain.IPLookup {
	lookup := &domain.IPLookup{
		IP:     firstNonEmpty(getString(payload, "ip"), ip),
		Source: domain.LookupSourceProvider,
		Location: domain.LocationInfo{
			CountryName: getString(payload, keysCountryName...),
			CountryCode: strings.ToUpper(getString(payload, keysCountryCode...)),
			Region:      getString(payload, keysRegion...),
			City:        getString(payload, keysCity...),
			PostalCode:  getString(payload, keysPostal...),
			TimeZone:    getString(payload, keysTimeZone...),
			Latitude:    getFloat(payload, keysLatitude...),
			Longitude:   getFloat(payload, keysLongitude...),
		},
		Network: domain.NetworkInfo{
			ASN:            formatASN(getString(payload, keysASN...)),
			Organization:   getString(payload, keysOrg...),
			ISP:            getString(payload, keysISP...),
			ConnectionType: strings.ToLower(getString(payload, keysConnection...)),
			IsHosting:      getBool(payload, keysHosting...),
		},
		Threat: domain.ThreatInfo{
			IsVPN:       getBool(payload, keysVPN...),
			IsProxy:     getBool(payload, keysProxy...),
			IsTor:       getBool(payload, keysTor...),
			IsRelay:     getBool(payload, keysRelay...),
			IsAbuser:    getBool(payload, keysAbuser...),
			IsBot:       getBool(payload, keysBot...),
			ThreatScore: getFloat(payload, keysThreatScore...),
		},
		AccuracyRadiusKm: getFloat(payload, keysRadius...),
	}

	if lookup.Network.ConnectionType == "hosting" {
		lookup.Network.IsHosting = true
	}

	for _, key := range keysConfidence {
		if v, ok := lookupPath(payload, key); ok && v != nil {
			if raw, err := json.Marshal(v); err == nil {
				lookup.ConfidenceArea = raw
			}
			break
		}
	}

	return lookup
}

// lookupPath достаёт значение по пути "a.b.c"
func lookupPath(m map[string]any, path string) (any, bool) {
	var cur any = m
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func getString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		v, ok := lookupPath(m, key)
		if !ok {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = strings.TrimSpace(t)
		case json.Number:
			s = t.String()
		case float64:
			s = strconv.FormatFloat(t, 'f', -1, 64)
		}
		if s != "" {
			return s
		}
	}
	return ""
}

func getFloat(m map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		v, ok := lookupPath(m, key)
		if !ok {
			continue
		}
		var (
			f   float64
			err error
		)
		switch t := v.(type) {
		case json.Number:
			f, err = t.Float64()
		case float64:
			f = t
		case string:
			if strings.TrimSpace(t) == "" {
				continue
			}
			f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
		default:
			continue
		}
		// ParseFloat принимает "NaN" и "Inf": такие значения пропускаем
		if err == nil && utils.IsFinite(f) {
			return &f
		}
	}
	return nil
}

func getBool(m map[string]any, keys ...string) bool {
	for _, key := range keys {
		v, ok := lookupPath(m, key)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
				return b
			}
		case json.Number:
			return t.String() != "0"
		}
	}
	return false
}

// formatASN приводит "15169" и "AS15169" к виду "AS15169"
func formatASN(s string) string {
	if s == "" {
		return ""
	}
	if _, err := strconv.ParseUint(s, 10, 32); err == nil {
		return fmt.Sprintf("AS%s", s)
	}
	return strings.ToUpper(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
