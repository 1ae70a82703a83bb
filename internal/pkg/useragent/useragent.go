// Package useragent - лёгкий разбор User-Agent по таблице регулярных выражений.
package useragent

import (
	"regexp"
	"strings"

	"github.com/visitor-geolocation/internal/domain"
)

const Unknown = "Unknown"

const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
)

type pattern struct {
	name string
	re   *regexp.Regexp
}

// Порядок важен: Edge и Opera содержат "Chrome", Chrome содержит "Safari".
var browsers = []pattern{
	{"Edge", regexp.MustCompile(`Edg(?:e|A|iOS)?/([\d.]+)`)},
	{"Opera", regexp.MustCompile(`(?:OPR|Opera)/([\d.]+)`)},
	{"Samsung Internet", regexp.MustCompile(`SamsungBrowser/([\d.]+)`)},
	{"Yandex Browser", regexp.MustCompile(`YaBrowser/([\d.]+)`)},
	{"Firefox", regexp.MustCompile(`(?:Firefox|FxiOS)/([\d.]+)`)},
	{"Chrome", regexp.MustCompile(`(?:Chrome|CriOS)/([\d.]+)`)},
	{"Safari", regexp.MustCompile(`Version/([\d.]+).*Safari/`)},
	{"Internet Explorer", regexp.MustCompile(`(?:MSIE |Trident/.*rv:)([\d.]+)`)},
	{"curl", regexp.MustCompile(`curl/([\d.]+)`)},
	{"Wget", regexp.MustCompile(`Wget/([\d.]+)`)},
	{"Python", regexp.MustCompile(`python-requests/([\d.]+)|Python-urllib/([\d.]+)`)},
	{"Go", regexp.MustCompile(`Go-http-client/([\d.]+)`)},
}

var systems = []pattern{
	{"iOS", regexp.MustCompile(`iPhone|iPad|iPod`)},
	{"Android", regexp.MustCompile(`Android`)},
	{"Windows", regexp.MustCompile(`Windows NT|Windows Phone`)},
	{"ChromeOS", regexp.MustCompile(`CrOS`)},
	{"macOS", regexp.MustCompile(`Mac OS X|Macintosh`)},
	{"Linux", regexp.MustCompile(`Linux`)},
}

var (
	botRe    = regexp.MustCompile(`(?i)bot\b|crawl|spider|slurp|headless|lighthouse|facebookexternalhit|preview|monitor|curl/|wget/|python-|go-http-client|httpclient|okhttp|scrapy`)
	mobileRe = regexp.MustCompile(`(?i)mobi|iphone|ipod|android.*mobile|windows phone|blackberry`)
)

// Parse определяет браузер, ОС, тип устройства и признак бота
func Parse(ua string) domain.UserAgentInfo {
	ua = strings.TrimSpace(ua)
	info := domain.UserAgentInfo{
		Raw:     ua,
		Browser: Unknown,
		OS:      Unknown,
		Device:  Unknown,
	}
	if ua == "" {
		return info
	}

	for _, p := range browsers {
		if m := p.re.FindStringSubmatch(ua); m != nil {
			info.Browser = p.name
			info.BrowserVersion = firstGroup(m)
			break
		}
	}

	for _, p := range systems {
		if p.re.MatchString(ua) {
			info.OS = p.name
			break
		}
	}

	switch {
	case botRe.MatchString(ua):
		info.IsBot = true
		info.Device = DeviceBot
	case isTablet(ua):
		info.Device = DeviceTablet
	case mobileRe.MatchString(ua):
		info.Device = DeviceMobile
	default:
		info.Device = DeviceDesktop
	}

	return info
}

func isTablet(ua string) bool {
	lower := strings.ToLower(ua)
	if strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet") ||
		strings.Contains(lower, "kindle") || strings.Contains(lower, "silk/") {
		return true
	}
	// Android без "Mobile" - планшет
	return strings.Contains(lower, "android") && !strings.Contains(lower, "mobile")
}

func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
